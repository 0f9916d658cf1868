package assessment

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// Distribution maps curriculum part IDs to the percentage of an
// assessment drawn from that part.
type Distribution map[string]float64

// DefaultDistribution returns the 15/35/15/35 split over the four parts.
func DefaultDistribution() Distribution {
	return Distribution{
		"part-1": 15,
		"part-2": 35,
		"part-3": 15,
		"part-4": 35,
	}
}

// Validate checks that percentages are non-negative, sum to 100 and
// only name known parts. A nil parts list skips the last check.
func (d Distribution) Validate(parts []string) error {
	var errs []string
	if len(d) == 0 {
		errs = append(errs, "distribution is empty")
	}

	var sum float64
	for _, part := range d.Parts() {
		pct := d[part]
		if pct < 0 {
			errs = append(errs, fmt.Sprintf("part %q has negative percentage %.1f", part, pct))
		}
		if parts != nil && !slices.Contains(parts, part) {
			errs = append(errs, fmt.Sprintf("unknown part %q", part))
		}
		sum += pct
	}
	if len(d) > 0 && math.Abs(sum-100) > 0.01 {
		errs = append(errs, fmt.Sprintf("percentages sum to %.1f, want 100", sum))
	}

	if len(errs) > 0 {
		return fmt.Errorf("distribution validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Parts returns the part IDs in sorted order.
func (d Distribution) Parts() []string {
	parts := make([]string, 0, len(d))
	for p := range d {
		parts = append(parts, p)
	}
	sort.Strings(parts)
	return parts
}

// Quotas rounds each part's share of target to the nearest integer.
// The quotas may not add up to target.
func (d Distribution) Quotas(target int) map[string]int {
	q := make(map[string]int, len(d))
	for part, pct := range d {
		q[part] = int(math.Round(float64(target) * pct / 100))
	}
	return q
}
