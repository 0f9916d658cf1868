package bank

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Format is the encoding of a bank document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ItemID is a bank item identifier. Documents may use strings or numbers.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %s", data)
	}
	*id = ItemID(n.String())
	return nil
}

// Item types.
const (
	TypeSingle = "single"
	TypeMulti  = "multi"
)

// Item is one question of a bank document.
type Item struct {
	ID         ItemID   `json:"id" yaml:"id"`
	Type       string   `json:"type" yaml:"type"`
	Topics     []string `json:"topics" yaml:"topics"`
	Stem       string   `json:"stem" yaml:"stem"`
	Options    []string `json:"options" yaml:"options"`
	Difficulty string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

// AnswerKey holds the zero-based indices of the correct options of the
// item with the same ID.
type AnswerKey struct {
	ID          ItemID `json:"id" yaml:"id"`
	Correct     []int  `json:"correct" yaml:"correct"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Document is a question bank file.
type Document struct {
	Items     []Item      `json:"items" yaml:"items"`
	AnswerKey []AnswerKey `json:"answerKey" yaml:"answerKey"`
}

func idString(n int) ItemID { return ItemID(strconv.Itoa(n)) }
