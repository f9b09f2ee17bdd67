package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReminderNotifier sends due-review nudges to the learner.
type ReminderNotifier interface {
	SendDueReminder(chatID int64, dueCount int) error
}

// ChatSource tells the reminder where the learner lives.
type ChatSource interface {
	Get() (int64, bool)
}

// ReminderService periodically checks for due words and nudges the learner.
// It never nudges twice for the same due count, so a learner who ignores a
// reminder is not spammed every tick.
type ReminderService struct {
	progressRepo ProgressRepository
	notifier     ReminderNotifier
	chats        ChatSource
	logger       *zap.Logger

	interval     time.Duration
	lastNotified int
}

func NewReminderService(
	progressRepo ProgressRepository,
	notifier ReminderNotifier,
	chats ChatSource,
	logger *zap.Logger,
	interval time.Duration,
) *ReminderService {
	return &ReminderService{
		progressRepo: progressRepo,
		notifier:     notifier,
		chats:        chats,
		logger:       logger,
		interval:     interval,
	}
}

// Run ticks until the context is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder service started", zap.Duration("interval", s.interval))
	defer s.logger.Info("reminder service stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, time.Now())
		}
	}
}

func (s *ReminderService) tick(ctx context.Context, now time.Time) {
	chatID, ok := s.chats.Get()
	if !ok {
		return // learner has not started the bot yet
	}

	due, err := s.progressRepo.DueWords(ctx, now)
	if err != nil {
		s.logger.Error("failed to count due words", zap.Error(err))
		return
	}

	if len(due) == 0 || len(due) == s.lastNotified {
		s.lastNotified = len(due)
		return
	}

	if err := s.notifier.SendDueReminder(chatID, len(due)); err != nil {
		s.logger.Error("failed to send reminder", zap.Error(err))
		return
	}
	s.lastNotified = len(due)
}
