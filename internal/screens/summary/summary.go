package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/analysis"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const analysisTimeout = 30 * time.Second

type savedMsg struct {
	Err error
}

type analysisMsg struct {
	Report *analysis.Report
}

// SummaryScreen displays the result of a finished run. On Init it saves
// the run to history and requests weak-topic analysis.
type SummaryScreen struct {
	svc     *screen.Services
	summary *session.Summary
	item    *store.HistoryItem

	report  *analysis.Report
	saveErr error
	saved   bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. A nil item skips saving.
func New(svc *screen.Services, summary *session.Summary, item *store.HistoryItem) *SummaryScreen {
	return &SummaryScreen{svc: svc, summary: summary, item: item}
}

func (s *SummaryScreen) Init() tea.Cmd {
	var cmds []tea.Cmd

	if s.item != nil && s.svc.History != nil {
		repo, item := s.svc.History, *s.item
		cmds = append(cmds, func() tea.Msg {
			_, err := repo.Save(context.Background(), item)
			return savedMsg{Err: err}
		})
	}

	analyzer := s.svc.Analyzer
	if analyzer == nil {
		analyzer = analysis.RuleAnalyzer{Threshold: s.svc.WeakThreshold}
	}
	sum := s.summary
	cmds = append(cmds, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()
		report, err := analyzer.Analyze(ctx, sum)
		if err != nil {
			logger.Get().Warn("weak-topic analysis failed", zap.Error(err))
			report = &analysis.Report{WeakTopics: sum.WeakTopics, Source: analysis.SourceRules}
		}
		return analysisMsg{Report: report}
	})

	return tea.Batch(cmds...)
}

func (s *SummaryScreen) Title() string {
	return "Run Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.canRemediate() {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Practice weak topics"})
	}
	return hints
}

// WeakTopics returns the analysed weak topics, or the rule-based ones
// while analysis is pending.
func (s *SummaryScreen) WeakTopics() []string {
	if s.report != nil {
		return s.report.WeakTopics
	}
	return s.summary.WeakTopics
}

func (s *SummaryScreen) canRemediate() bool {
	return len(s.WeakTopics()) > 0 && s.svc.Generator != nil && s.svc.Setup != nil
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saved = msg.Err == nil
		s.saveErr = msg.Err
		return s, nil

	case analysisMsg:
		s.report = msg.Report
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "r", "R":
			if !s.canRemediate() {
				return s, nil
			}
			next := s.svc.Setup(quiz.ModeRemedial, s.WeakTopics())
			return s, tea.Sequence(
				func() tea.Msg { return router.PopToRootMsg{} },
				func() tea.Msg { return router.PushScreenMsg{Screen: next} },
			)
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(layout.Centered(width, theme.Title, "Run complete!"))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s  ·  Duration: %d:%02d", sum.Mode.DisplayName(), mins, secs)))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		sum.TotalQuestions, sum.TotalCorrect, sum.Accuracy*100)
	b.WriteString(layout.Centered(width, theme.Body, statsLine))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(barWidth, 0)))

	section := func(title string, rows []session.Breakdown) {
		if len(rows) == 0 {
			return
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Heading.Render(title)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, row := range rows {
			label := fmt.Sprintf("%-24s %d/%d", truncate(row.Label, 24), row.Correct, row.Attempted)
			bar := components.NewProgressBar(label, row.Accuracy, true, barWidth)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	section("Topics", sum.Topics)
	section("Difficulty", sum.Difficulties)

	weak := s.WeakTopics()
	if len(weak) > 0 {
		b.WriteString(layout.Centered(width, theme.Warning, "Weak topics: "+strings.Join(weak, ", ")))
		b.WriteString("\n")
	}
	if s.report == nil {
		b.WriteString(layout.Centered(width, theme.Hint, "Analysing results..."))
		b.WriteString("\n")
	} else if s.report.Feedback != "" {
		fb := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(s.report.Feedback)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fb))
		b.WriteString("\n")
	}

	if s.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Incorrect, "Could not save to history: "+s.saveErr.Error()))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
