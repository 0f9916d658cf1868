package curriculum

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var defaultCurriculum []byte

// Default returns the built-in curriculum tree. It is built once.
var Default = sync.OnceValue(func() *Tree {
	t, err := Parse(defaultCurriculum)
	if err != nil {
		panic(fmt.Sprintf("built-in curriculum: %v", err))
	}
	return t
})

// node is an arena entry. Relationships are indices into Tree.nodes.
type node struct {
	id          string
	title       string
	description string
	parent      int // -1 for parts
	children    []int
	part        int // index of the top-level ancestor
	depth       int
}

// Tree is an immutable curriculum tree stored as an arena with lookup
// indices built once.
type Tree struct {
	name    string
	nodes   []node // preorder
	parts   []int
	byTitle map[string]int
	byID    map[string]int
	leaves  []int
}

// Parse builds a Tree from YAML.
func Parse(data []byte) (*Tree, error) {
	var c Curriculum
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return Build(c)
}

// LoadFile builds a Tree from a YAML file on disk.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum %s: %w", path, err)
	}
	return Parse(data)
}

// Build validates the curriculum and constructs the arena and indices.
func Build(c Curriculum) (*Tree, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	t := &Tree{
		name:    c.Name,
		byTitle: make(map[string]int),
		byID:    make(map[string]int),
	}

	var add func(tp Topic, parent, part, depth int) int
	add = func(tp Topic, parent, part, depth int) int {
		idx := len(t.nodes)
		if parent == -1 {
			part = idx
		}
		t.nodes = append(t.nodes, node{
			id:          tp.ID,
			title:       tp.Title,
			description: tp.Description,
			parent:      parent,
			part:        part,
			depth:       depth,
		})
		t.byTitle[tp.Title] = idx
		t.byID[tp.ID] = idx

		for _, child := range tp.Children {
			cidx := add(child, idx, part, depth+1)
			t.nodes[idx].children = append(t.nodes[idx].children, cidx)
		}
		if len(tp.Children) == 0 {
			t.leaves = append(t.leaves, idx)
		}
		return idx
	}

	for _, p := range c.Parts {
		t.parts = append(t.parts, add(p, -1, 0, 0))
	}
	return t, nil
}

// Name returns the curriculum name.
func (t *Tree) Name() string { return t.name }

// Len returns the number of topics in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) view(idx int) Node {
	n := t.nodes[idx]
	return Node{
		ID:          n.id,
		Title:       n.title,
		Description: n.description,
		Part:        t.nodes[n.part].id,
		Depth:       n.depth,
		Leaf:        len(n.children) == 0,
	}
}

// Lookup returns the topic with the given title.
func (t *Tree) Lookup(title string) (Node, bool) {
	idx, ok := t.byTitle[title]
	if !ok {
		return Node{}, false
	}
	return t.view(idx), true
}

// ByID returns the topic with the given ID.
func (t *Tree) ByID(id string) (Node, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.view(idx), true
}

// IsLeaf reports whether title names a topic without children.
func (t *Tree) IsLeaf(title string) bool {
	idx, ok := t.byTitle[title]
	return ok && len(t.nodes[idx].children) == 0
}

// Parent returns the parent title of a topic. Parts have no parent.
func (t *Tree) Parent(title string) (string, bool) {
	idx, ok := t.byTitle[title]
	if !ok || t.nodes[idx].parent == -1 {
		return "", false
	}
	return t.nodes[t.nodes[idx].parent].title, true
}

// Children returns the direct children titles of a topic.
func (t *Tree) Children(title string) []string {
	idx, ok := t.byTitle[title]
	if !ok {
		return nil
	}
	return t.titles(t.nodes[idx].children)
}

// Descendants returns every title below the topic, in preorder.
func (t *Tree) Descendants(title string) []string {
	idx, ok := t.byTitle[title]
	if !ok {
		return nil
	}
	sub := t.subtree(idx)
	return t.titles(sub[1:])
}

// PartOf returns the part ID of the topic with the given title.
func (t *Tree) PartOf(title string) (string, bool) {
	idx, ok := t.byTitle[title]
	if !ok {
		return "", false
	}
	return t.nodes[t.nodes[idx].part].id, true
}

// PartLookup returns a title -> part ID map covering every topic.
func (t *Tree) PartLookup() map[string]string {
	m := make(map[string]string, len(t.nodes))
	for _, n := range t.nodes {
		m[n.title] = t.nodes[n.part].id
	}
	return m
}

// Parts returns the top-level topics.
func (t *Tree) Parts() []Node {
	out := make([]Node, len(t.parts))
	for i, idx := range t.parts {
		out[i] = t.view(idx)
	}
	return out
}

// Leaves returns all leaf titles in preorder.
func (t *Tree) Leaves() []string {
	return t.titles(t.leaves)
}

// Titles returns every title in preorder.
func (t *Tree) Titles() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.title
	}
	return out
}

// Walk calls fn for every topic in preorder.
func (t *Tree) Walk(fn func(Node)) {
	for i := range t.nodes {
		fn(t.view(i))
	}
}

// Path returns the titles from the part down to the topic, joined by " > ".
func (t *Tree) Path(title string) string {
	idx, ok := t.byTitle[title]
	if !ok {
		return title
	}
	var parts []string
	for i := idx; i != -1; i = t.nodes[i].parent {
		parts = append(parts, t.nodes[i].title)
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

// subtree returns idx followed by all of its descendants in preorder.
// Nodes are stored in preorder, so the subtree is a contiguous run.
func (t *Tree) subtree(idx int) []int {
	end := idx + 1
	for end < len(t.nodes) && t.isAncestor(idx, end) {
		end++
	}
	out := make([]int, 0, end-idx)
	for i := idx; i < end; i++ {
		out = append(out, i)
	}
	return out
}

func (t *Tree) isAncestor(anc, idx int) bool {
	for p := t.nodes[idx].parent; p != -1; p = t.nodes[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

func (t *Tree) titles(idxs []int) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = t.nodes[idx].title
	}
	return out
}
