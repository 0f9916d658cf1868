package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

const llmEventTable = "llm_request_events"

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "cached", "error_message", "request_body", "response_body",
}

type llmEventRow struct {
	ID           int    `db:"id"`
	Timestamp    int64  `db:"timestamp"`
	Provider     string `db:"provider"`
	Model        string `db:"model"`
	Purpose      string `db:"purpose"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	LatencyMs    int64  `db:"latency_ms"`
	Success      bool   `db:"success"`
	Cached       bool   `db:"cached"`
	ErrorMessage string `db:"error_message"`
	RequestBody  string `db:"request_body"`
	ResponseBody string `db:"response_body"`
}

func (row llmEventRow) event() LLMEvent {
	return LLMEvent{
		ID:        row.ID,
		Timestamp: time.UnixMilli(row.Timestamp),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     row.Provider,
			Model:        row.Model,
			Purpose:      row.Purpose,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			LatencyMs:    row.LatencyMs,
			Success:      row.Success,
			Cached:       row.Cached,
			ErrorMessage: row.ErrorMessage,
			RequestBody:  row.RequestBody,
			ResponseBody: row.ResponseBody,
		},
	}
}

// eventRepo implements EventRepo.
type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := builder().Insert(llmEventTable).
		Columns(llmEventColumns[1:]...).
		Values(
			time.Now().UnixMilli(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.Cached,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(llmEventColumns...).From(entsql.Table(llmEventTable))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	var rows []llmEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, len(rows))
	for i, row := range rows {
		events[i] = row.event()
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().Select(llmEventColumns...).
		From(entsql.Table(llmEventTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var row llmEventRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	e := row.event()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	query, args := builder().Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
	).
		From(entsql.Table(llmEventTable)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	var rows []struct {
		Purpose      string  `db:"purpose"`
		Calls        int     `db:"calls"`
		InputTokens  int     `db:"input_tokens"`
		OutputTokens int     `db:"output_tokens"`
		AvgLatencyMs float64 `db:"avg_latency_ms"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}

	out := make([]PurposeUsage, len(rows))
	for i, row := range rows {
		out[i] = PurposeUsage{
			Purpose:      row.Purpose,
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			AvgLatencyMs: int64(row.AvgLatencyMs),
		}
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args := builder().Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(entsql.Table(llmEventTable)).
		Where(entsql.EQ("cached", false)).
		GroupBy("model").
		OrderBy("model").
		Query()

	var out []ModelUsage
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}
