package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

var progressNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func tempProgressPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "progress.json")
}

func TestProgressMissingFileStartsEmpty(t *testing.T) {
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	all, err := r.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProgressCorruptFile(t *testing.T) {
	path := tempProgressPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r, err := NewFileProgressRepository(path)
	assert.ErrorIs(t, err, ErrCorruptState)
	require.NotNil(t, r, "caller can warn and continue with an empty store")

	all, err := r.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProgressRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := tempProgressPath(t)

	r, err := NewFileProgressRepository(path)
	require.NoError(t, err)

	policy := entities.DefaultReviewPolicy()
	p := entities.NewWordProgress("w1", progressNow)
	p.Apply(policy, true, 2*time.Second, progressNow)
	p.Apply(policy, false, 3*time.Second, progressNow.Add(time.Hour))

	require.NoError(t, r.Upsert(ctx, p))
	require.NoError(t, r.Save(ctx))

	reopened, err := NewFileProgressRepository(path)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, p.CorrectCount, got.CorrectCount)
	assert.Equal(t, p.IncorrectCount, got.IncorrectCount)
	assert.Equal(t, p.Streak, got.Streak)
	assert.Equal(t, p.DifficultyScore, got.DifficultyScore)
	assert.Equal(t, p.TotalTimeMs, got.TotalTimeMs)
	assert.True(t, p.DueAt.Equal(got.DueAt))
	require.NotNil(t, got.LastSeenAt)
	assert.True(t, p.LastSeenAt.Equal(*got.LastSeenAt))
}

func TestProgressGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	p := entities.NewWordProgress("w1", progressNow)
	require.NoError(t, r.Upsert(ctx, p))

	got, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	got.CorrectCount = 99

	again, err := r.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.CorrectCount, "mutating a snapshot must not leak into the store")
}

func TestProgressGetUnknown(t *testing.T) {
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	_, err = r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestProgressUpsertWithoutID(t *testing.T) {
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	assert.Error(t, r.Upsert(context.Background(), &entities.WordProgress{}))
}

func TestDueWords(t *testing.T) {
	ctx := context.Background()
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	due := entities.NewWordProgress("b", progressNow.Add(-time.Hour))
	alsoDue := entities.NewWordProgress("a", progressNow) // due_at == now counts as due
	notDue := entities.NewWordProgress("c", progressNow.Add(time.Hour))

	for _, p := range []*entities.WordProgress{due, alsoDue, notDue} {
		require.NoError(t, r.Upsert(ctx, p))
	}

	got, err := r.DueWords(ctx, progressNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDifficultWordsOrdering(t *testing.T) {
	ctx := context.Background()
	r, err := NewFileProgressRepository(tempProgressPath(t))
	require.NoError(t, err)

	records := []*entities.WordProgress{
		{WordID: "mid", DifficultyScore: 8, CorrectCount: 3, IncorrectCount: 1},
		{WordID: "top", DifficultyScore: 10, CorrectCount: 1, IncorrectCount: 4},
		{WordID: "tie-worse", DifficultyScore: 8, CorrectCount: 1, IncorrectCount: 3},
		{WordID: "below", DifficultyScore: 6.9, CorrectCount: 0, IncorrectCount: 5},
	}
	for _, p := range records {
		require.NoError(t, r.Upsert(ctx, p))
	}

	got, err := r.DifficultWords(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "tie-worse", "mid"}, got)
}

func TestSaveIsAtomicRename(t *testing.T) {
	ctx := context.Background()
	path := tempProgressPath(t)

	r, err := NewFileProgressRepository(path)
	require.NoError(t, err)
	require.NoError(t, r.Upsert(ctx, entities.NewWordProgress("w1", progressNow)))
	require.NoError(t, r.Save(ctx))

	// No temp files left behind next to the store.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "progress.json", entries[0].Name())
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")

	r, err := NewFileHistoryRepository(path)
	require.NoError(t, err)

	sum := entities.SessionSummary{
		Mode:        entities.ModeQuiz,
		TotalWords:  5,
		Correct:     4,
		Incorrect:   1,
		Accuracy:    80,
		StartedAt:   progressNow,
		CompletedAt: progressNow.Add(10 * time.Minute),
	}
	require.NoError(t, r.Append(ctx, sum))

	reopened, err := NewFileHistoryRepository(path)
	require.NoError(t, err)

	got, err := reopened.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entities.ModeQuiz, got[0].Mode)
	assert.Equal(t, 4, got[0].Correct)
	assert.True(t, sum.CompletedAt.Equal(got[0].CompletedAt))
}

func TestHistoryCorruptFileIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))

	r, err := NewFileHistoryRepository(path)
	assert.ErrorIs(t, err, ErrCorruptState)
	require.NotNil(t, r, "caller can continue with an empty archive")

	got, allErr := r.All(context.Background())
	require.NoError(t, allErr)
	assert.Empty(t, got)
}
