package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
)

type ProgressService struct {
	progressRepo ProgressRepository
	historyRepo  HistoryRepository
	wordRepo     WordRepository
	policy       entities.ReviewPolicy
}

func NewProgressService(
	progressRepo ProgressRepository,
	historyRepo HistoryRepository,
	wordRepo WordRepository,
	policy entities.ReviewPolicy,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		historyRepo:  historyRepo,
		wordRepo:     wordRepo,
		policy:       policy,
	}
}

func (s *ProgressService) Policy() entities.ReviewPolicy {
	return s.policy
}

// GetOrCreate returns the record for wordID, creating a zeroed one that is
// due immediately when the word has never been scheduled.
func (s *ProgressService) GetOrCreate(ctx context.Context, wordID string, now time.Time) (*entities.WordProgress, error) {
	p, err := s.progressRepo.Get(ctx, wordID)
	if err != nil && !errors.Is(err, repository.ErrProgressNotFound) {
		return nil, err
	}
	if p == nil {
		p = entities.NewWordProgress(wordID, now)
	}
	return p, nil
}

// RecordAttempt applies the interval policy for one answered attempt and
// persists the store. A failed write is retried once; if it still fails the
// updated record is returned alongside the error, so the in-memory state
// stays authoritative for the rest of the session.
func (s *ProgressService) RecordAttempt(
	ctx context.Context,
	wordID string,
	correct bool,
	elapsed time.Duration,
	now time.Time,
) (*entities.WordProgress, error) {
	p, err := s.GetOrCreate(ctx, wordID, now)
	if err != nil {
		return nil, err
	}

	p.Apply(s.policy, correct, elapsed, now)

	if err := s.progressRepo.Upsert(ctx, p); err != nil {
		return p, fmt.Errorf("upsert progress: %w", err)
	}
	if err := s.progressRepo.Save(ctx); err != nil {
		if err = s.progressRepo.Save(ctx); err != nil {
			return p, fmt.Errorf("persist progress: %w", err)
		}
	}

	return p, nil
}

// DueWords returns IDs eligible for review at the given time.
func (s *ProgressService) DueWords(ctx context.Context, now time.Time) ([]string, error) {
	return s.progressRepo.DueWords(ctx, now)
}

// DifficultWords returns IDs at or above the difficulty threshold, hardest
// first.
func (s *ProgressService) DifficultWords(ctx context.Context, threshold float64) ([]string, error) {
	return s.progressRepo.DifficultWords(ctx, threshold)
}

// ArchiveSession appends a finished session to the history archive.
func (s *ProgressService) ArchiveSession(ctx context.Context, sum entities.SessionSummary) error {
	return s.historyRepo.Append(ctx, sum)
}

// Statistics aggregates the whole progress store for the /progress view.
type Statistics struct {
	TotalWordsSeen    int
	Mastered          int
	Learning          int
	Struggling        int
	Difficult         int
	TotalReviews      int
	AccuracyRate      float64 // percentage over all attempts
	AverageDifficulty float64
	DayStreak         int // consecutive study days up to the last session
	SessionsCompleted int
}

// GetStatistics computes aggregate statistics from the progress store and the
// session archive.
func (s *ProgressService) GetStatistics(ctx context.Context, now time.Time) (*Statistics, error) {
	records, err := s.progressRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	stats := &Statistics{}
	var totalCorrect, totalAttempts int
	var difficultySum float64

	for _, p := range records {
		if p.Attempts() == 0 {
			continue
		}
		stats.TotalWordsSeen++
		totalCorrect += p.CorrectCount
		totalAttempts += p.Attempts()
		difficultySum += p.DifficultyScore

		switch p.Phase(s.policy) {
		case entities.PhaseMastered:
			stats.Mastered++
		case entities.PhaseLearning:
			stats.Learning++
		case entities.PhaseStruggling:
			stats.Struggling++
		}
		if p.IsDifficult(s.policy) {
			stats.Difficult++
		}
	}

	stats.TotalReviews = totalAttempts
	if totalAttempts > 0 {
		stats.AccuracyRate = float64(totalCorrect) / float64(totalAttempts) * 100
	}
	if stats.TotalWordsSeen > 0 {
		stats.AverageDifficulty = difficultySum / float64(stats.TotalWordsSeen)
	}

	sessions, err := s.historyRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	stats.SessionsCompleted = len(sessions)
	stats.DayStreak = dayStreak(sessions, now)

	return stats, nil
}

// ExportDifficultWords writes words at or above the difficulty threshold as
// CSV, hardest first, and returns how many were written.
func (s *ProgressService) ExportDifficultWords(ctx context.Context, w io.Writer) (int, error) {
	ids, err := s.progressRepo.DifficultWords(ctx, s.policy.DifficultyThreshold)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	header := []string{"word", "definition", "part_of_speech", "example", "difficulty", "correct_count", "incorrect_count"}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	written := 0
	for _, id := range ids {
		word, err := s.wordRepo.Get(id)
		if errors.Is(err, repository.ErrWordNotFound) {
			continue // orphaned record, word not in the current vocabulary
		}
		if err != nil {
			return written, err
		}

		p, err := s.progressRepo.Get(ctx, id)
		if err != nil {
			return written, err
		}

		row := []string{
			word.Word,
			word.Definition,
			word.PartOfSpeech,
			word.Example,
			strconv.FormatFloat(p.DifficultyScore, 'f', -1, 64),
			strconv.Itoa(p.CorrectCount),
			strconv.Itoa(p.IncorrectCount),
		}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("write export row: %w", err)
		}
		written++
	}

	cw.Flush()
	return written, cw.Error()
}

// dayStreak counts consecutive study days ending at the most recent session
// day, provided that day is today or yesterday. Older activity means the
// streak is broken.
func dayStreak(sessions []entities.SessionSummary, now time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	days := make(map[string]bool, len(sessions))
	var last time.Time
	for _, sum := range sessions {
		d := sum.CompletedAt
		days[d.Format(time.DateOnly)] = true
		if d.After(last) {
			last = d
		}
	}

	today := startOfDay(now)
	lastDay := startOfDay(last)
	if today.Sub(lastDay) > 24*time.Hour {
		return 0
	}

	streak := 0
	for d := lastDay; days[d.Format(time.DateOnly)]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
