package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

type fakeNotifier struct {
	calls []int
}

func (f *fakeNotifier) SendDueReminder(_ int64, dueCount int) error {
	f.calls = append(f.calls, dueCount)
	return nil
}

type fakeChatSource struct {
	chatID int64
	ok     bool
}

func (f *fakeChatSource) Get() (int64, bool) { return f.chatID, f.ok }

func TestReminderTickNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	progress := newTestProgressRepo(t)
	notifier := &fakeNotifier{}
	chats := &fakeChatSource{chatID: 42, ok: true}

	svc := NewReminderService(progress, notifier, chats, zap.NewNop(), time.Hour)

	require.NoError(t, progress.Upsert(ctx, entities.NewWordProgress("w1", builderNow)))
	require.NoError(t, progress.Upsert(ctx, entities.NewWordProgress("w2", builderNow)))

	svc.tick(ctx, builderNow)
	svc.tick(ctx, builderNow)

	assert.Equal(t, []int{2}, notifier.calls, "an unchanged due count is not re-announced")
}

func TestReminderTickNoticesNewDueWords(t *testing.T) {
	ctx := context.Background()
	progress := newTestProgressRepo(t)
	notifier := &fakeNotifier{}
	chats := &fakeChatSource{chatID: 42, ok: true}

	svc := NewReminderService(progress, notifier, chats, zap.NewNop(), time.Hour)

	require.NoError(t, progress.Upsert(ctx, entities.NewWordProgress("w1", builderNow)))
	svc.tick(ctx, builderNow)

	require.NoError(t, progress.Upsert(ctx, entities.NewWordProgress("w2", builderNow)))
	svc.tick(ctx, builderNow)

	assert.Equal(t, []int{1, 2}, notifier.calls)
}

func TestReminderTickWithoutLearner(t *testing.T) {
	ctx := context.Background()
	progress := newTestProgressRepo(t)
	notifier := &fakeNotifier{}

	svc := NewReminderService(progress, notifier, &fakeChatSource{}, zap.NewNop(), time.Hour)

	require.NoError(t, progress.Upsert(ctx, entities.NewWordProgress("w1", builderNow)))
	svc.tick(ctx, builderNow)

	assert.Empty(t, notifier.calls, "nothing to send before the learner appears")
}

func TestReminderTickNothingDue(t *testing.T) {
	ctx := context.Background()
	progress := newTestProgressRepo(t)
	notifier := &fakeNotifier{}

	svc := NewReminderService(progress, notifier, &fakeChatSource{chatID: 42, ok: true}, zap.NewNop(), time.Hour)

	p := entities.NewWordProgress("w1", builderNow)
	p.Apply(entities.DefaultReviewPolicy(), true, time.Second, builderNow)
	require.NoError(t, progress.Upsert(ctx, p))

	svc.tick(ctx, builderNow)
	assert.Empty(t, notifier.calls)
}
