package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/logger"
)

const historyTable = "quiz_history"

type historyRow struct {
	ID          string `db:"id"`
	CompletedAt int64  `db:"completed_at"`
	Payload     string `db:"payload"`
}

// historyRepo implements HistoryRepo. Items are stored as JSON payloads.
type historyRepo struct {
	db       *sqlx.DB
	maxItems int
}

func (r *historyRepo) Save(ctx context.Context, item HistoryItem) (HistoryItem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return item, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	item, err = r.insert(ctx, tx, item)
	if err != nil {
		return item, err
	}
	if err := r.evict(ctx, tx); err != nil {
		return item, err
	}
	if err := tx.Commit(); err != nil {
		return item, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

func (r *historyRepo) insert(ctx context.Context, tx *sqlx.Tx, item HistoryItem) (HistoryItem, error) {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	if item.CompletedAt.IsZero() {
		item.CompletedAt = time.Now()
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return item, fmt.Errorf("encode history item: %w", err)
	}

	query, args := builder().Insert(historyTable).
		Columns("id", "completed_at", "payload").
		Values(item.ID, item.CompletedAt.UnixMilli(), string(payload)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return item, fmt.Errorf("insert history item %s: %w", item.ID, err)
	}
	return item, nil
}

// evict deletes everything beyond the newest maxItems rows.
func (r *historyRepo) evict(ctx context.Context, tx *sqlx.Tx) error {
	query, args := builder().Select("id").
		From(entsql.Table(historyTable)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("id")).
		Query()

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return fmt.Errorf("list history ids: %w", err)
	}
	if len(ids) <= r.maxItems {
		return nil
	}

	stale := make([]any, 0, len(ids)-r.maxItems)
	for _, id := range ids[r.maxItems:] {
		stale = append(stale, id)
	}
	query, args = builder().Delete(historyTable).Where(entsql.In("id", stale...)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("evict history: %w", err)
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context) ([]HistoryItem, error) {
	query, args := builder().Select("id", "completed_at", "payload").
		From(entsql.Table(historyTable)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("id")).
		Query()

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		item, err := decodeHistory(row)
		if err != nil {
			logger.Get().Warn("malformed quiz history, clearing it",
				zap.String("id", row.ID),
				zap.Error(err))
			if cerr := r.Clear(ctx); cerr != nil {
				return nil, cerr
			}
			return []HistoryItem{}, nil
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *historyRepo) Get(ctx context.Context, id string) (*HistoryItem, error) {
	query, args := builder().Select("id", "completed_at", "payload").
		From(entsql.Table(historyTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var row historyRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get history item: %w", err)
	}
	item, err := decodeHistory(row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *historyRepo) Delete(ctx context.Context, id string) error {
	query, args := builder().Delete(historyTable).Where(entsql.EQ("id", id)).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	return nil
}

func (r *historyRepo) Clear(ctx context.Context) error {
	query, args := builder().Delete(historyTable).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (r *historyRepo) Export(ctx context.Context, w io.Writer) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// Import replaces items by id and keeps the rest. Either every item is
// imported or none is.
func (r *historyRepo) Import(ctx context.Context, rd io.Reader) (int, error) {
	var items []HistoryItem
	if err := json.NewDecoder(rd).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode history: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if item.ID != "" {
			query, args := builder().Delete(historyTable).Where(entsql.EQ("id", item.ID)).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return 0, fmt.Errorf("replace history item %s: %w", item.ID, err)
			}
		}
		if _, err := r.insert(ctx, tx, item); err != nil {
			return 0, err
		}
	}
	if err := r.evict(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(items), nil
}

func decodeHistory(row historyRow) (HistoryItem, error) {
	var item HistoryItem
	if err := json.Unmarshal([]byte(row.Payload), &item); err != nil {
		return item, fmt.Errorf("decode history item %s: %w", row.ID, err)
	}
	if item.ID != row.ID {
		return item, fmt.Errorf("history item %s has payload id %q", row.ID, item.ID)
	}
	return item, nil
}
