package curriculum

import (
	"fmt"
	"strings"
)

// Validate performs structural checks on a curriculum definition.
// Returns a combined error describing all problems found, or nil if valid.
func Validate(c Curriculum) error {
	var errs []string

	if len(c.Parts) == 0 {
		errs = append(errs, "curriculum has no parts")
	}

	ids := make(map[string]bool)
	titles := make(map[string]bool)

	var check func(tp Topic, path string)
	check = func(tp Topic, path string) {
		where := path + "/" + tp.ID
		if tp.ID == "" {
			errs = append(errs, fmt.Sprintf("topic %q under %s has no id", tp.Title, path))
		} else if ids[tp.ID] {
			errs = append(errs, fmt.Sprintf("duplicate topic id: %q", tp.ID))
		}
		ids[tp.ID] = true

		title := strings.TrimSpace(tp.Title)
		switch {
		case title == "":
			errs = append(errs, fmt.Sprintf("topic %s has no title", where))
		case title != tp.Title:
			errs = append(errs, fmt.Sprintf("topic %s title has surrounding whitespace", where))
		case titles[tp.Title]:
			errs = append(errs, fmt.Sprintf("duplicate topic title: %q", tp.Title))
		}
		titles[tp.Title] = true

		for _, child := range tp.Children {
			check(child, where)
		}
	}

	for _, p := range c.Parts {
		check(p, "")
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
