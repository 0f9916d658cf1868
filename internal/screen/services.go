package screen

import (
	"math/rand/v2"

	"github.com/abhisek/quizdeck/internal/analysis"
	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/store"
)

// Services are the collaborators shared by every screen. Nil fields
// disable the features that need them.
type Services struct {
	Tree *curriculum.Tree

	// Generator backs practice and remedial runs.
	Generator questiongen.Generator

	// ProviderName is shown in the header.
	ProviderName string

	History  store.HistoryRepo
	Analyzer analysis.Analyzer

	// BankPaths are the assessment question banks.
	BankPaths    []string
	Distribution assessment.Distribution
	Strict       bool

	// Examples feed style-aligned generation.
	Examples []quiz.Question

	// Counts is the default number of questions per mode.
	Counts map[quiz.Mode]int

	WeakThreshold float64

	// Setup builds the setup screen for a new run. Screens that cannot
	// import the setup screen use it to start remedial runs.
	Setup func(mode quiz.Mode, topics []string) Screen

	// Rand returns a fresh RNG for planning and sampling.
	Rand func() *rand.Rand
}

// DefaultCount returns the configured question count for mode.
func (s *Services) DefaultCount(mode quiz.Mode) int {
	if n := s.Counts[mode]; n > 0 {
		return n
	}
	return 10
}

// RNG returns a random source, seeded randomly when Rand is unset.
func (s *Services) RNG() *rand.Rand {
	if s.Rand != nil {
		return s.Rand()
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
