package setup

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/bank"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	sessionscreen "github.com/abhisek/quizdeck/internal/screens/session"
	"github.com/abhisek/quizdeck/internal/screens/topics"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

type field int

const (
	fieldTopics field = iota
	fieldEasy
	fieldMedium
	fieldHard
	fieldCount
	fieldStyle
	fieldStart
)

type poolReadyMsg struct {
	Questions []quiz.Question
	Dropped   int
	Err       error
}

const (
	minQuestions = 1
	maxQuestions = 99
)

// SetupScreen collects the settings of a run and starts it.
type SetupScreen struct {
	svc          *screen.Services
	mode         quiz.Mode
	topics       []string
	difficulties map[quiz.Difficulty]bool
	styleAligned bool
	count        components.NumberInput
	startBtn     components.Button

	fields  []field
	cursor  int
	loading bool
	errMsg  string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a setup screen for mode. Remedial runs pass the weak topics
// to drill.
func New(svc *screen.Services, mode quiz.Mode, topicTitles []string) *SetupScreen {
	count := components.NewNumberInput(svc.DefaultCount(mode), minQuestions, maxQuestions)

	s := &SetupScreen{
		svc:    svc,
		mode:   mode,
		topics: topicTitles,
		difficulties: map[quiz.Difficulty]bool{
			quiz.DifficultyEasy:   true,
			quiz.DifficultyMedium: true,
			quiz.DifficultyHard:   true,
		},
		count:    count,
		startBtn: components.NewButton("Start", false),
	}

	if mode.Generated() {
		s.fields = append(s.fields, fieldTopics, fieldEasy, fieldMedium, fieldHard)
	}
	s.fields = append(s.fields, fieldCount)
	if mode.Generated() && len(svc.Examples) > 0 {
		s.fields = append(s.fields, fieldStyle)
	}
	s.fields = append(s.fields, fieldStart)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return s.mode.DisplayName() + " Setup"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Toggle"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

// Settings returns the settings as currently entered.
func (s *SetupScreen) Settings() quiz.Settings {
	var diffs []quiz.Difficulty
	for _, d := range quiz.AllDifficulties() {
		if s.difficulties[d] {
			diffs = append(diffs, d)
		}
	}
	n := s.count.Int()
	return quiz.Settings{
		Topics:            s.topics,
		Difficulties:      diffs,
		NumberOfQuestions: n,
		Mode:              s.mode,
		StyleAligned:      s.styleAligned,
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topics.ChosenMsg:
		s.topics = msg.Titles
		s.errMsg = ""
		return s, nil

	case poolReadyMsg:
		s.loading = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		run := sessionscreen.NewWithQuestions(s.svc, s.Settings(), msg.Questions)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: run} }

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	current := s.fields[s.cursor]

	s.startBtn.Focused = current == fieldStart
	if s.startBtn.Pressed(msg) {
		return s, s.start()
	}

	switch msg.String() {
	case "up", "k", "shift+tab":
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil
	case "down", "j", "tab":
		if s.cursor < len(s.fields)-1 {
			s.cursor++
		}
		return s, nil
	case "space", " ", "enter":
		switch current {
		case fieldTopics:
			picker := topics.New(s.svc.Tree, s.topics)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: picker} }
		case fieldEasy:
			s.toggleDifficulty(quiz.DifficultyEasy)
		case fieldMedium:
			s.toggleDifficulty(quiz.DifficultyMedium)
		case fieldHard:
			s.toggleDifficulty(quiz.DifficultyHard)
		case fieldStyle:
			s.styleAligned = !s.styleAligned
		case fieldCount:
			if msg.String() == "enter" {
				s.cursor++
			}
		}
		return s, nil
	}

	if current == fieldCount {
		var cmd tea.Cmd
		s.count, cmd = s.count.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) toggleDifficulty(d quiz.Difficulty) {
	s.difficulties[d] = !s.difficulties[d]
}

// start validates the settings and launches the run.
func (s *SetupScreen) start() tea.Cmd {
	settings := s.Settings()
	s.errMsg = ""

	if !s.count.Valid() {
		s.errMsg = fmt.Sprintf("Questions must be between %d and %d.", minQuestions, maxQuestions)
		return nil
	}

	if settings.Mode.Generated() {
		batch, err := questiongen.Prepare(s.svc.Tree, s.svc.Generator, settings,
			questiongen.BatchOptions{Examples: s.svc.Examples}, s.svc.RNG())
		if err != nil {
			s.errMsg = describe(err)
			return nil
		}
		run := sessionscreen.NewGenerated(s.svc, settings, batch)
		return func() tea.Msg { return router.PushScreenMsg{Screen: run} }
	}

	settings.Difficulties = quiz.AllDifficulties()
	if err := settings.Validate(); err != nil {
		s.errMsg = describe(err)
		return nil
	}

	s.loading = true
	svc := s.svc
	return func() tea.Msg {
		res, err := bank.NewLoader(svc.Tree).LoadFiles(svc.BankPaths)
		if err != nil {
			return poolReadyMsg{Err: err}
		}
		sel := assessment.NewSelector(svc.Tree, svc.Distribution, assessment.Options{
			Strict: svc.Strict,
			Rand:   svc.RNG(),
		})
		qs, err := sel.Select(res.Questions, settings.NumberOfQuestions)
		return poolReadyMsg{Questions: qs, Dropped: len(res.Dropped), Err: err}
	}
}

// describe turns run-start errors into one line for the form.
func describe(err error) string {
	var verr *quiz.ValidationError
	var perr *quiz.InsufficientPoolError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &perr):
		return fmt.Sprintf("Not enough questions: have %d, need %d.", perr.Have, perr.Need)
	default:
		return err.Error()
	}
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render(s.mode.DisplayName()))
	b.WriteString("\n\n")

	for i, f := range s.fields {
		b.WriteString(s.renderField(f, i == s.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.loading:
		b.WriteString(theme.Hint.Render("  Loading question banks..."))
	case s.errMsg != "":
		b.WriteString("  " + theme.Incorrect.Render(s.errMsg))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *SetupScreen) renderField(f field, selected bool) string {
	cursor := "  "
	style := theme.Unselected
	if selected {
		cursor = "▸ "
		style = theme.Selected
	}
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}

	var line string
	switch f {
	case fieldTopics:
		line = "Topics        " + s.topicSummary()
	case fieldEasy:
		line = "Difficulty    " + check(s.difficulties[quiz.DifficultyEasy]) + " easy"
	case fieldMedium:
		line = "              " + check(s.difficulties[quiz.DifficultyMedium]) + " medium"
	case fieldHard:
		line = "              " + check(s.difficulties[quiz.DifficultyHard]) + " hard"
	case fieldCount:
		return cursor + style.Render("Questions     ") + s.count.View()
	case fieldStyle:
		line = "Match style   " + check(s.styleAligned) + fmt.Sprintf(" %d example questions", len(s.svc.Examples))
	case fieldStart:
		btn := s.startBtn
		btn.Focused = selected
		return "\n" + btn.View()
	}
	return cursor + style.Render(line)
}

func (s *SetupScreen) topicSummary() string {
	switch len(s.topics) {
	case 0:
		return theme.Hint.Render("none, press Enter to choose")
	case 1, 2, 3:
		return strings.Join(s.topics, ", ")
	default:
		return fmt.Sprintf("%s and %d more", strings.Join(s.topics[:2], ", "), len(s.topics)-2)
	}
}
