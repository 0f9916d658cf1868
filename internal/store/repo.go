package store

import (
	"context"
	"io"
	"time"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// LeanResult is the correctness-only form of a quiz result kept in history.
type LeanResult struct {
	QuestionID int    `json:"questionId"`
	Topic      string `json:"topic,omitempty"`
	Correct    bool   `json:"correct"`
}

// HistoryItem is a completed quiz run. Items are never mutated once saved.
type HistoryItem struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"sessionId,omitempty"`
	Settings    quiz.Settings `json:"settings"`
	Results     []LeanResult  `json:"results"`
	CompletedAt time.Time     `json:"completedAt"`
	TotalTime   time.Duration `json:"totalTime"`
}

// Score returns the number of correct results and the total.
func (h HistoryItem) Score() (correct, total int) {
	for _, r := range h.Results {
		if r.Correct {
			correct++
		}
	}
	return correct, len(h.Results)
}

// HistoryRepo persists completed quiz runs, newest first, capped at a
// maximum count.
type HistoryRepo interface {
	// Save assigns an ID when empty, stores the item and evicts the oldest
	// items beyond the cap. Returns the stored item.
	Save(ctx context.Context, item HistoryItem) (HistoryItem, error)

	// List returns all items, most recent first. A malformed stored item
	// wipes the history and an empty list is returned.
	List(ctx context.Context) ([]HistoryItem, error)

	// Get returns the item with the given ID, or nil if absent.
	Get(ctx context.Context, id string) (*HistoryItem, error)

	// Delete removes one item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every item.
	Clear(ctx context.Context) error

	// Export writes all items as a JSON array.
	Export(ctx context.Context, w io.Writer) error

	// Import reads a JSON array of items and saves each one. Returns the
	// number of items read.
	Import(ctx context.Context, r io.Reader) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Cached       bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
