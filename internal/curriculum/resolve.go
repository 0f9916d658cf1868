package curriculum

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Resolve maps free text to a topic title. An exact title or ID match wins,
// then a case-insensitive title match, then the best fuzzy match. Several
// equally good fuzzy matches are reported as an ambiguity error.
func (t *Tree) Resolve(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: empty topic", ErrUnknownTopic)
	}
	if idx, ok := t.byTitle[q]; ok {
		return t.nodes[idx].title, nil
	}
	if idx, ok := t.byID[q]; ok {
		return t.nodes[idx].title, nil
	}
	for _, n := range t.nodes {
		if strings.EqualFold(n.title, q) {
			return n.title, nil
		}
	}

	ranks := fuzzy.RankFindFold(q, t.Titles())
	if len(ranks) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, q)
	}
	sort.Sort(ranks)
	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		var candidates []string
		for _, r := range ranks {
			if r.Distance != ranks[0].Distance {
				break
			}
			candidates = append(candidates, r.Target)
		}
		return "", fmt.Errorf("ambiguous topic %q: matches %s", q, strings.Join(candidates, ", "))
	}
	return ranks[0].Target, nil
}

// ResolveAll resolves each query, dropping the ones that cannot be resolved.
// Returned titles are unique and keep first-seen order.
func (t *Tree) ResolveAll(queries []string) (resolved []string, dropped []string) {
	seen := make(map[string]bool)
	for _, q := range queries {
		title, err := t.Resolve(q)
		if err != nil {
			dropped = append(dropped, q)
			continue
		}
		if !seen[title] {
			seen[title] = true
			resolved = append(resolved, title)
		}
	}
	return resolved, dropped
}
