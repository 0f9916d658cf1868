package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NumberInput is a digits-only text field bounded to [Min, Max].
type NumberInput struct {
	Model textinput.Model
	Min   int
	Max   int
}

// NewNumberInput starts focused with value prefilled.
func NewNumberInput(value, lo, hi int) NumberInput {
	ti := textinput.New()
	ti.CharLimit = len(strconv.Itoa(hi))
	ti.Placeholder = strconv.Itoa(lo)
	ti.SetValue(strconv.Itoa(value))
	ti.Focus()
	return NumberInput{Model: ti, Min: lo, Max: hi}
}

func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if key := kmsg.String(); len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return n, nil
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// Int returns the entered number clamped to the bounds. An empty or
// unparsable field yields Min.
func (n NumberInput) Int() int {
	v, err := strconv.Atoi(n.Model.Value())
	if err != nil {
		return n.Min
	}
	return min(max(v, n.Min), n.Max)
}

// Valid reports whether the raw text is a number inside the bounds.
func (n NumberInput) Valid() bool {
	v, err := strconv.Atoi(n.Model.Value())
	return err == nil && v >= n.Min && v <= n.Max
}

func (n NumberInput) View() string {
	return n.Model.View()
}
