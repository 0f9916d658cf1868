package session

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/store"
)

// DefaultWeakThreshold is the accuracy below which a topic counts as weak.
const DefaultWeakThreshold = 0.6

// Breakdown is the score of one topic or difficulty.
type Breakdown struct {
	Label     string
	Attempted int
	Correct   int
	Accuracy  float64
}

// Summary holds the data displayed on the summary screen.
type Summary struct {
	SessionID      string
	Mode           quiz.Mode
	Duration       time.Duration
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64

	// Topics is ordered by first appearance in the run.
	Topics []Breakdown

	// Difficulties follows easy, medium, hard and omits unused levels.
	Difficulties []Breakdown

	// WeakTopics lists topics under the threshold, weakest first.
	WeakTopics []string
}

// BuildSummary creates a Summary from the run state.
func BuildSummary(state *State, threshold float64, now time.Time) *Summary {
	correct, total := state.Score()

	s := &Summary{
		SessionID:      state.ID,
		Mode:           state.Settings.Mode,
		Duration:       state.Elapsed(now),
		TotalQuestions: total,
		TotalCorrect:   correct,
		Accuracy:       ratio(correct, total),
	}

	byTopic := lo.GroupBy(state.Results, func(r quiz.Result) string { return r.Question.Topic })
	topics := lo.Uniq(lo.Map(state.Results, func(r quiz.Result, _ int) string { return r.Question.Topic }))
	for _, t := range topics {
		s.Topics = append(s.Topics, breakdown(t, byTopic[t]))
	}

	byDifficulty := lo.GroupBy(state.Results, func(r quiz.Result) quiz.Difficulty { return r.Question.Difficulty })
	for _, d := range quiz.AllDifficulties() {
		if rs, ok := byDifficulty[d]; ok {
			s.Difficulties = append(s.Difficulties, breakdown(string(d), rs))
		}
	}

	s.WeakTopics = s.TopicsBelow(threshold)
	return s
}

// TopicsBelow returns topics whose accuracy is under threshold, weakest
// first. Topics with equal accuracy keep their run order.
func (s *Summary) TopicsBelow(threshold float64) []string {
	weak := lo.Filter(s.Topics, func(b Breakdown, _ int) bool {
		return b.Label != "" && b.Accuracy < threshold
	})
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	return lo.Map(weak, func(b Breakdown, _ int) string { return b.Label })
}

func breakdown(label string, results []quiz.Result) Breakdown {
	correct := lo.CountBy(results, func(r quiz.Result) bool { return r.Correct })
	return Breakdown{
		Label:     label,
		Attempted: len(results),
		Correct:   correct,
		Accuracy:  ratio(correct, len(results)),
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// ToHistoryItem converts a run into its lean history form.
func ToHistoryItem(state *State, completedAt time.Time) store.HistoryItem {
	return store.HistoryItem{
		SessionID: state.ID,
		Settings:  state.Settings,
		Results: lo.Map(state.Results, func(r quiz.Result, _ int) store.LeanResult {
			return store.LeanResult{QuestionID: r.Question.ID, Topic: r.Question.Topic, Correct: r.Correct}
		}),
		CompletedAt: completedAt,
		TotalTime:   state.Elapsed(completedAt),
	}
}

// SummaryFromHistory rebuilds a summary from a stored history item, so past
// runs can feed weak-topic analysis.
func SummaryFromHistory(item store.HistoryItem, threshold float64) *Summary {
	st := &State{ID: item.SessionID, Settings: item.Settings}
	for _, r := range item.Results {
		st.Results = append(st.Results, quiz.Result{
			Question: quiz.Question{ID: r.QuestionID, Topic: r.Topic},
			Correct:  r.Correct,
		})
	}
	s := BuildSummary(st, threshold, time.Time{})
	s.Duration = item.TotalTime
	s.Difficulties = nil
	return s
}
