// Package analysis identifies the topics a learner should revisit after a
// quiz run.
package analysis

import (
	"context"

	"github.com/abhisek/quizdeck/internal/session"
)

// Source tells where a Report came from.
type Source string

const (
	SourceRules Source = "rules"
	SourceLLM   Source = "llm"
)

// Report is the outcome of analysing one run.
type Report struct {
	// WeakTopics are curriculum titles, weakest first.
	WeakTopics []string

	// Feedback is a short note for the learner. Empty for rule-based reports.
	Feedback string

	Source Source
}

// Analyzer produces a Report for a completed run.
type Analyzer interface {
	Analyze(ctx context.Context, summary *session.Summary) (*Report, error)
}

// WeakTopics returns the topics whose accuracy is under threshold,
// weakest first.
func WeakTopics(summary *session.Summary, threshold float64) []string {
	if summary == nil {
		return nil
	}
	return summary.TopicsBelow(threshold)
}

// RuleAnalyzer reports weak topics from per-topic accuracy alone.
type RuleAnalyzer struct {
	Threshold float64
}

func (r RuleAnalyzer) Analyze(_ context.Context, summary *session.Summary) (*Report, error) {
	return &Report{WeakTopics: WeakTopics(summary, r.Threshold), Source: SourceRules}, nil
}
