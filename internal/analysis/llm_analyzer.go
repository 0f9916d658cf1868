package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/session"
)

// Purpose is the LLM purpose label for weak-topic analysis.
const Purpose = "weak-topic-analysis"

// Config holds configuration for the LLM analyzer.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Threshold is used by the rule-based fallback.
	Threshold float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.3,
		Threshold:   session.DefaultWeakThreshold,
	}
}

// LLMAnalyzer asks the model which topics to revisit. Any failure (provider
// error, unparseable output, no resolvable topic) falls back to the
// rule-based list, so Analyze never fails.
type LLMAnalyzer struct {
	provider llm.Provider
	tree     *curriculum.Tree
	cfg      Config
}

// NewLLMAnalyzer creates an LLM-backed analyzer.
func NewLLMAnalyzer(provider llm.Provider, tree *curriculum.Tree, cfg Config) *LLMAnalyzer {
	return &LLMAnalyzer{provider: provider, tree: tree, cfg: cfg}
}

type analysisOutput struct {
	Feedback   string   `json:"feedback"`
	WeakTopics []string `json:"weak_topics"`
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, summary *session.Summary) (*Report, error) {
	fallback := &Report{WeakTopics: WeakTopics(summary, a.cfg.Threshold), Source: SourceRules}
	if summary == nil || len(summary.Topics) == 0 {
		return fallback, nil
	}

	log := logger.Get().With(zap.String("session", summary.SessionID))

	out, err := a.ask(ctx, summary)
	if err != nil {
		log.Warn("weak-topic analysis failed, using accuracy rules", zap.Error(err))
		return fallback, nil
	}

	resolved, dropped := a.tree.ResolveAll(out.WeakTopics)
	if len(dropped) > 0 {
		log.Info("dropped unknown topics from analysis", zap.Strings("topics", dropped))
	}
	if len(resolved) == 0 {
		fallback.Feedback = strings.TrimSpace(out.Feedback)
		return fallback, nil
	}

	return &Report{
		WeakTopics: resolved,
		Feedback:   strings.TrimSpace(out.Feedback),
		Source:     SourceLLM,
	}, nil
}

func (a *LLMAnalyzer) ask(ctx context.Context, summary *session.Summary) (*analysisOutput, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	userMsg, err := buildAnalysisMessage(summary, a.cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("build analysis prompt: %w", err)
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      analysisSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM analysis failed: %w", err)
	}

	obj, err := questiongen.ExtractJSON(resp.Text())
	if err != nil {
		return nil, err
	}

	// Round trip through JSON to decode the generic object into the output
	// struct, ignoring extra keys.
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var out analysisOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &out, nil
}

const analysisSystemPrompt = `You review the results of a multiple-choice quiz and tell the learner which curriculum topics to revisit.

Instructions:
- Only name topics from the results list, spelled exactly as given.
- Order weak_topics from weakest to strongest. Leave out topics the learner has mastered.
- Keep feedback to two sentences, addressed to the learner.
- Respond with a single JSON object: {"feedback": "...", "weak_topics": ["..."]}`

type topicLine struct {
	Label     string
	Correct   int
	Attempted int
	Percent   int
}

var analysisUserTemplate = template.Must(template.New("analysis").Parse(`Mode: {{.Mode}}
Score: {{.Correct}}/{{.Total}}
Accuracy below {{.Threshold}}% counts as weak.

Results by topic:
{{range .Topics}}- {{.Label}}: {{.Correct}}/{{.Attempted}} ({{.Percent}}%)
{{end}}`))

func buildAnalysisMessage(s *session.Summary, threshold float64) (string, error) {
	data := struct {
		Mode      string
		Correct   int
		Total     int
		Threshold int
		Topics    []topicLine
	}{
		Mode:      s.Mode.DisplayName(),
		Correct:   s.TotalCorrect,
		Total:     s.TotalQuestions,
		Threshold: int(threshold * 100),
		Topics: lo.Map(s.Topics, func(b session.Breakdown, _ int) topicLine {
			return topicLine{Label: b.Label, Correct: b.Correct, Attempted: b.Attempted, Percent: int(b.Accuracy*100 + 0.5)}
		}),
	}

	var buf bytes.Buffer
	if err := analysisUserTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
