package curriculum

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when a toggle would leave nothing selected.
	ErrEmptySelection = errors.New("at least one topic must stay selected")

	// ErrUnknownTopic is returned for titles that are not in the tree.
	ErrUnknownTopic = errors.New("unknown topic")
)

// Selection is a set of selected topic titles bound to a Tree. Toggle
// never mutates the receiver; it returns a new Selection.
type Selection struct {
	tree *Tree
	set  map[int]bool
}

// NewSelection builds a selection from titles. Unknown titles are rejected.
// Parents whose children are all selected are inferred as selected and
// selected parents pull in their descendants.
func NewSelection(t *Tree, titles []string) (Selection, error) {
	s := Selection{tree: t, set: make(map[int]bool)}
	for _, title := range titles {
		idx, ok := t.byTitle[title]
		if !ok {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownTopic, title)
		}
		for _, i := range t.subtree(idx) {
			s.set[i] = true
		}
	}
	s.inferParents()
	return s, nil
}

// SelectAll returns a selection containing every topic.
func SelectAll(t *Tree) Selection {
	s := Selection{tree: t, set: make(map[int]bool, len(t.nodes))}
	for i := range t.nodes {
		s.set[i] = true
	}
	return s
}

// Toggle checks or unchecks a topic and returns the resulting selection.
//
// Checking selects the topic and all its descendants, then marks each
// ancestor selected when all of its direct children are selected.
// Unchecking deselects the topic, its descendants and every ancestor.
// A toggle that would empty the selection is rejected with
// ErrEmptySelection and the receiver is returned unchanged.
func (s Selection) Toggle(title string, checked bool) (Selection, error) {
	idx, ok := s.tree.byTitle[title]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownTopic, title)
	}

	next := Selection{tree: s.tree, set: make(map[int]bool, len(s.set))}
	for i := range s.set {
		next.set[i] = true
	}

	for _, i := range s.tree.subtree(idx) {
		if checked {
			next.set[i] = true
		} else {
			delete(next.set, i)
		}
	}

	for p := s.tree.nodes[idx].parent; p != -1; p = s.tree.nodes[p].parent {
		if !checked {
			delete(next.set, p)
			continue
		}
		if !next.allChildrenSelected(p) {
			break
		}
		next.set[p] = true
	}

	if len(next.set) == 0 {
		return s, ErrEmptySelection
	}
	return next, nil
}

func (s Selection) allChildrenSelected(idx int) bool {
	for _, c := range s.tree.nodes[idx].children {
		if !s.set[c] {
			return false
		}
	}
	return true
}

// inferParents marks parents selected bottom-up when all their children
// are selected. Nodes are in preorder, so a reverse scan visits children
// before parents.
func (s Selection) inferParents() {
	for i := len(s.tree.nodes) - 1; i >= 0; i-- {
		if len(s.tree.nodes[i].children) > 0 && s.allChildrenSelected(i) {
			s.set[i] = true
		}
	}
}

// Len returns the number of selected topics.
func (s Selection) Len() int { return len(s.set) }

// Contains reports whether title is selected.
func (s Selection) Contains(title string) bool {
	if s.tree == nil {
		return false
	}
	idx, ok := s.tree.byTitle[title]
	return ok && s.set[idx]
}

// Titles returns the selected titles in tree order.
func (s Selection) Titles() []string {
	if s.tree == nil {
		return nil
	}
	var out []string
	for i, n := range s.tree.nodes {
		if s.set[i] {
			out = append(out, n.title)
		}
	}
	return out
}

// Leaves returns the selected leaf titles in tree order.
func (s Selection) Leaves() []string {
	if s.tree == nil {
		return nil
	}
	return s.tree.LeafFilter(s.Titles())
}

// LeafFilter keeps only titles that name leaf topics, preserving order.
func (t *Tree) LeafFilter(titles []string) []string {
	var out []string
	for _, title := range titles {
		if t.IsLeaf(title) {
			out = append(out, title)
		}
	}
	return out
}

// ExpandWeakTopics returns each title plus all of its descendants,
// deduplicated, in tree order. Unknown titles are ignored.
func (t *Tree) ExpandWeakTopics(titles []string) []string {
	seen := make(map[int]bool)
	for _, title := range titles {
		idx, ok := t.byTitle[title]
		if !ok {
			continue
		}
		for _, i := range t.subtree(idx) {
			seen[i] = true
		}
	}
	var out []string
	for i, n := range t.nodes {
		if seen[i] {
			out = append(out, n.title)
		}
	}
	return out
}
