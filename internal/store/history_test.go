package store

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdeck/internal/quiz"
)

func historyItem(at time.Time, correct ...bool) HistoryItem {
	item := HistoryItem{
		Settings: quiz.Settings{
			Topics:            []string{"Loops"},
			Difficulties:      []quiz.Difficulty{quiz.DifficultyEasy},
			NumberOfQuestions: len(correct),
			Mode:              quiz.ModePractice,
		},
		CompletedAt: at,
		TotalTime:   90 * time.Second,
	}
	for i, c := range correct {
		item.Results = append(item.Results, LeanResult{QuestionID: i + 1, Topic: "Loops", Correct: c})
	}
	return item
}

func TestHistory_SaveAndList(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(10)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := repo.Save(ctx, historyItem(base, true, false))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := repo.Save(ctx, historyItem(base.Add(time.Hour), true))
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "most recent first")
	assert.Equal(t, first.ID, items[1].ID)

	correct, total := items[1].Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
	assert.Equal(t, quiz.ModePractice, items[1].Settings.Mode)
	assert.True(t, items[1].CompletedAt.Equal(base))
}

func TestHistory_CapKeepsMostRecent(t *testing.T) {
	const max = 5
	repo := openTestStore(t).HistoryRepo(max)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var saved []HistoryItem
	for i := 0; i < max+1; i++ {
		item, err := repo.Save(ctx, historyItem(base.Add(time.Duration(i)*time.Minute), true))
		require.NoError(t, err)
		saved = append(saved, item)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, max)
	for i, item := range items {
		assert.Equal(t, saved[max-i].ID, item.ID, "position %d", i)
	}

	got, err := repo.Get(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got, "oldest item should be evicted")
}

func TestHistory_GetDeleteClear(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(0)
	ctx := context.Background()

	a, err := repo.Save(ctx, historyItem(time.Now().Add(-time.Minute), true))
	require.NoError(t, err)
	b, err := repo.Save(ctx, historyItem(time.Now(), false))
	require.NoError(t, err)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	require.NoError(t, repo.Delete(ctx, "missing"))
	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)

	require.NoError(t, repo.Clear(ctx))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHistory_MalformedPayloadWipes(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo(0)
	ctx := context.Background()

	_, err := repo.Save(ctx, historyItem(time.Now(), true))
	require.NoError(t, err)
	_, err = s.DB().Exec(`INSERT INTO quiz_history (id, completed_at, payload) VALUES ('bad', 1, '{not json')`)
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM quiz_history`).Scan(&n))
	assert.Equal(t, 0, n, "history should be wiped")
}

func TestHistory_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t).HistoryRepo(0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := src.Save(ctx, historyItem(base.Add(time.Duration(i)*time.Hour), i%2 == 0))
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))

	dst := openTestStore(t).HistoryRepo(2)
	n, err := dst.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := dst.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2, "import respects the cap")
	assert.True(t, items[0].CompletedAt.Equal(base.Add(2*time.Hour)))
}

func TestHistory_ImportRejectsGarbage(t *testing.T) {
	repo := openTestStore(t).HistoryRepo(0)
	_, err := repo.Import(context.Background(), bytes.NewBufferString("not json"))
	assert.Error(t, err)
}

func TestHistory_ImportIsAllOrNothing(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo(0)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	kept, err := repo.Save(ctx, historyItem(base, true))
	require.NoError(t, err)

	_, err = s.DB().Exec(`CREATE TRIGGER reject_broken BEFORE INSERT ON quiz_history
		WHEN NEW.id = 'broken' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	replaced := kept
	replaced.Results = nil
	broken := historyItem(base.Add(2*time.Hour), true)
	broken.ID = "broken"
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode([]HistoryItem{
		replaced,
		historyItem(base.Add(time.Hour), false),
		broken,
	}))

	_, err = repo.Import(ctx, &buf)
	require.Error(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "a failed import leaves history untouched")
	assert.Equal(t, kept.ID, items[0].ID)
	assert.Len(t, items[0].Results, 1)
}
