package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// Dropped records a bank entry that was skipped.
type Dropped struct {
	Source string
	ID     ItemID
	Reason string
}

// Result is the outcome of loading one or more bank documents.
type Result struct {
	Questions []quiz.Question
	Dropped   []Dropped
}

// Loader turns bank documents into questions.
type Loader struct {
	tree *curriculum.Tree
	ids  questiongen.IDAssigner
	log  *zap.Logger
}

// NewLoader creates a loader resolving topics against tree. Question ids
// are numbered from 1 across everything the loader reads.
func NewLoader(tree *curriculum.Tree) *Loader {
	return &Loader{tree: tree, ids: questiongen.NewCounter(1), log: logger.Get()}
}

// Load decodes one document and converts every usable entry. Bad entries
// are dropped with a warning. A document without usable entries fails
// with *quiz.InsufficientPoolError.
func (l *Loader) Load(r io.Reader, format Format, source string) (*Result, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
	}

	return l.LoadDocument(doc, source)
}

// LoadDocument converts an already decoded document.
func (l *Loader) LoadDocument(doc Document, source string) (*Result, error) {
	res := l.convert(doc, source)
	if len(res.Questions) == 0 {
		return res, &quiz.InsufficientPoolError{Have: 0, Need: 1}
	}
	return res, nil
}

// LoadFile loads a single bank file.
func (l *Loader) LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer f.Close()
	return l.Load(f, FormatFromPath(path), filepath.Base(path))
}

// LoadFiles loads and merges several bank files. Directories are expanded
// to the .json, .yaml and .yml files they contain. Files without usable
// entries are skipped; the merged result must not be empty.
func (l *Loader) LoadFiles(paths []string) (*Result, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &quiz.ValidationError{Field: "banks", Message: "select at least one question bank file"}
	}

	merged := &Result{}
	for _, path := range files {
		res, err := l.LoadFile(path)
		if res != nil {
			merged.Dropped = append(merged.Dropped, res.Dropped...)
			merged.Questions = append(merged.Questions, res.Questions...)
		}
		var ipe *quiz.InsufficientPoolError
		if err != nil && !errors.As(err, &ipe) {
			return nil, err
		}
	}
	if len(merged.Questions) == 0 {
		return merged, &quiz.InsufficientPoolError{Have: 0, Need: 1}
	}
	return merged, nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				continue
			}
			files = append(files, matches...)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func (l *Loader) convert(doc Document, source string) *Result {
	res := &Result{}
	drop := func(id ItemID, reason string) {
		l.log.Warn("dropping bank entry",
			zap.String("source", source),
			zap.String("id", string(id)),
			zap.String("reason", reason))
		res.Dropped = append(res.Dropped, Dropped{Source: source, ID: id, Reason: reason})
	}

	keys := make(map[ItemID]AnswerKey, len(doc.AnswerKey))
	for _, k := range doc.AnswerKey {
		if _, dup := keys[k.ID]; dup {
			drop(k.ID, "duplicate answer key")
			continue
		}
		keys[k.ID] = k
	}

	seen := make(map[ItemID]bool, len(doc.Items))
	for _, item := range doc.Items {
		if seen[item.ID] {
			drop(item.ID, "duplicate item id")
			continue
		}
		seen[item.ID] = true

		key, ok := keys[item.ID]
		if !ok {
			drop(item.ID, "no answer key")
			continue
		}
		q, reason := l.toQuestion(item, key)
		if reason != "" {
			drop(item.ID, reason)
			continue
		}
		res.Questions = append(res.Questions, q)
	}

	for _, k := range doc.AnswerKey {
		if !seen[k.ID] {
			drop(k.ID, "answer key without item")
		}
	}
	return res
}

// toQuestion converts an item. A non-empty reason means the item is unusable.
func (l *Loader) toQuestion(item Item, key AnswerKey) (quiz.Question, string) {
	if item.ID == "" {
		return quiz.Question{}, "missing id"
	}
	if item.Type != TypeSingle && item.Type != TypeMulti {
		return quiz.Question{}, fmt.Sprintf("unknown type %q", item.Type)
	}
	if strings.TrimSpace(item.Stem) == "" {
		return quiz.Question{}, "empty stem"
	}
	if len(item.Options) < 2 {
		return quiz.Question{}, fmt.Sprintf("%d options, need at least 2", len(item.Options))
	}
	if len(key.Correct) == 0 {
		return quiz.Question{}, "no correct options"
	}
	if item.Type == TypeSingle && len(key.Correct) != 1 {
		return quiz.Question{}, fmt.Sprintf("single item has %d correct options", len(key.Correct))
	}

	var correct []string
	for _, idx := range key.Correct {
		if idx < 0 || idx >= len(item.Options) {
			return quiz.Question{}, fmt.Sprintf("correct index %d out of range", idx)
		}
		if slices.Contains(correct, item.Options[idx]) {
			return quiz.Question{}, fmt.Sprintf("correct index %d repeats an answer", idx)
		}
		correct = append(correct, item.Options[idx])
	}

	difficulty := quiz.DifficultyMedium
	if item.Difficulty != "" {
		d, err := quiz.ParseDifficulty(item.Difficulty)
		if err != nil {
			return quiz.Question{}, err.Error()
		}
		difficulty = d
	}

	answer := quiz.Set(correct...)
	if item.Type == TypeSingle {
		answer = quiz.Single(correct[0])
	}

	return quiz.Question{
		ID:               l.ids.NextID(),
		Text:             item.Stem,
		Options:          slices.Clone(item.Options),
		CorrectAnswer:    answer,
		IsMultipleChoice: item.Type == TypeMulti,
		Difficulty:       difficulty,
		Explanation:      key.Explanation,
		Topic:            l.resolveTopic(item),
	}, ""
}

// resolveTopic returns the first item topic that matches the curriculum.
// When none does, the first raw label is kept so the question still loads.
func (l *Loader) resolveTopic(item Item) string {
	for _, t := range item.Topics {
		if title, err := l.tree.Resolve(t); err == nil {
			return title
		}
	}
	if len(item.Topics) == 0 {
		return ""
	}
	l.log.Info("bank topic not in curriculum",
		zap.String("id", string(item.ID)),
		zap.Strings("topics", item.Topics))
	return item.Topics[0]
}
