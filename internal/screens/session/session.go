package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/summary"
	sess "github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
)

type phase int

const (
	phaseGenerating phase = iota
	phaseAnswering
	phaseFeedback
	phaseError
)

// SessionScreen drives one quiz run: generation progress for generated
// modes, then answering with feedback after each question.
type SessionScreen struct {
	svc      *screen.Services
	settings quiz.Settings

	batch  *questiongen.Batch
	ctx    context.Context
	cancel context.CancelFunc

	state      *sess.State
	phase      phase
	choice     components.MultiChoice
	lastResult quiz.Result

	showingQuitConfirm bool
	warning            string
	errMsg             string

	now func() time.Time
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackInterceptor = (*SessionScreen)(nil)

// NewGenerated creates a run whose questions come from batch, generated
// one slot at a time.
func NewGenerated(svc *screen.Services, settings quiz.Settings, batch *questiongen.Batch) *SessionScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionScreen{
		svc:      svc,
		settings: settings,
		batch:    batch,
		ctx:      ctx,
		cancel:   cancel,
		phase:    phaseGenerating,
		now:      time.Now,
	}
}

// NewWithQuestions creates a run over ready questions, such as an
// assessment drawn from question banks.
func NewWithQuestions(svc *screen.Services, settings quiz.Settings, questions []quiz.Question) *SessionScreen {
	s := &SessionScreen{svc: svc, settings: settings, now: time.Now}
	s.begin(questions)
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.phase == phaseGenerating {
		return s.generateNext()
	}
	return tickCmd()
}

func (s *SessionScreen) Title() string {
	return s.settings.Mode.DisplayName()
}

// InterceptBack keeps Esc inside the screen so a run is never dropped
// without confirmation.
func (s *SessionScreen) InterceptBack() bool {
	return s.phase != phaseError
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End run"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case phaseAnswering:
		if s.choice.Multi {
			return []layout.KeyHint{
				{Key: "Space", Description: "Toggle"},
				{Key: "Enter", Description: "Submit"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case phaseGenerating:
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return nil
}

func (s *SessionScreen) View(width, height int) string {
	if s.showingQuitConfirm {
		return s.renderQuitConfirm(width, height)
	}
	switch s.phase {
	case phaseError:
		return renderError(width, height, s.errMsg)
	case phaseGenerating:
		return s.renderGenerating(width, height)
	case phaseFeedback:
		return s.renderFeedback(width, height)
	default:
		return s.renderQuestionView(width, height)
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionReadyMsg:
		return s.handleQuestionReady(msg)

	case timerTickMsg:
		if s.phase == phaseAnswering || s.phase == phaseFeedback {
			return s, tickCmd()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// generateNext requests the next batch slot.
func (s *SessionScreen) generateNext() tea.Cmd {
	i, ok := s.batch.Next()
	if !ok {
		return nil
	}
	batch, ctx := s.batch, s.ctx
	return func() tea.Msg {
		q, err := batch.Generate(ctx, i)
		return questionReadyMsg{Slot: i, Question: q, Err: err}
	}
}

func (s *SessionScreen) handleQuestionReady(msg questionReadyMsg) (screen.Screen, tea.Cmd) {
	if s.phase != phaseGenerating {
		return s, nil
	}
	if errors.Is(msg.Err, context.Canceled) {
		return s, nil
	}
	if s.batch.Record(msg.Slot, msg.Question, msg.Err) {
		return s, s.generateNext()
	}

	questions := s.batch.Questions()
	if len(questions) == 0 {
		err := s.batch.Err()
		if err == nil {
			err = errors.New("no questions were generated")
		}
		s.fail(err)
		return s, nil
	}

	switch {
	case s.batch.Err() != nil:
		s.warning = fmt.Sprintf("Generation stopped after %d of %d questions: %v", len(questions), s.batch.Len(), s.batch.Err())
	case s.batch.Skipped() > 0:
		s.warning = fmt.Sprintf("%d questions were skipped after malformed responses.", s.batch.Skipped())
	}

	s.begin(questions)
	return s, tickCmd()
}

// begin starts answering questions.
func (s *SessionScreen) begin(questions []quiz.Question) {
	state, err := sess.New(s.settings, questions, s.now())
	if err != nil {
		s.fail(err)
		return
	}
	s.state = state
	s.phase = phaseAnswering
	s.resetChoice()
}

func (s *SessionScreen) fail(err error) {
	s.phase = phaseError
	s.errMsg = err.Error()
}

func (s *SessionScreen) resetChoice() {
	q, ok := s.state.Current()
	if !ok {
		return
	}
	s.choice = components.NewMultiChoice(q.Text, q.Options, q.IsMultipleChoice)
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.phase == phaseError {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, s.quit()
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	switch s.phase {
	case phaseFeedback:
		return s, s.advance()

	case phaseAnswering:
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			return s, s.submit()
		}
		return s, cmd
	}
	return s, nil
}

// submit grades the chosen options and shows feedback.
func (s *SessionScreen) submit() tea.Cmd {
	q, _ := s.state.Current()
	res, err := s.state.Submit(s.choice.Answer(), s.now())
	if err != nil {
		s.choice.Submitted = false
		return nil
	}
	s.lastResult = res
	s.choice.Reveal(q.CorrectAnswer.Values())
	s.phase = phaseFeedback
	return nil
}

// advance moves to the next question or finishes the run.
func (s *SessionScreen) advance() tea.Cmd {
	if s.state.Advance(s.now()) {
		s.phase = phaseAnswering
		s.resetChoice()
		return nil
	}
	return s.finish()
}

// quit ends the run early. Answered questions still produce a summary.
func (s *SessionScreen) quit() tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	if s.state == nil || len(s.state.Results) == 0 {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	s.state.Questions = s.state.Questions[:len(s.state.Results)]
	s.state.CompletedAt = s.now()
	return s.finish()
}

func (s *SessionScreen) finish() tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	now := s.now()
	sum := sess.BuildSummary(s.state, s.svc.WeakThreshold, now)
	item := sess.ToHistoryItem(s.state, now)
	next := summary.New(s.svc, sum, &item)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
