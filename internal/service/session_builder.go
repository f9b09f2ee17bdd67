package service

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// SessionBuilder assembles study queues that mix due-for-review words,
// struggling words and brand-new words under a size budget.
type SessionBuilder struct {
	wordRepo     WordRepository
	progressRepo ProgressRepository
	policy       entities.ReviewPolicy

	// freezeMastered excludes mastered words from review and backfill pools.
	freezeMastered bool

	rng *rand.Rand
}

// NewSessionBuilder creates a builder. Pass a fixed-seed rng for reproducible
// queues; nil seeds from the clock.
func NewSessionBuilder(
	wordRepo WordRepository,
	progressRepo ProgressRepository,
	policy entities.ReviewPolicy,
	freezeMastered bool,
	rng *rand.Rand,
) *SessionBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SessionBuilder{
		wordRepo:       wordRepo,
		progressRepo:   progressRepo,
		policy:         policy,
		freezeMastered: freezeMastered,
		rng:            rng,
	}
}

// BuildSession returns an ordered queue of word IDs of at most sessionSize
// entries. Review words are chosen by difficulty (hardest first, most overdue
// as tiebreak); new words are drawn at random; the two groups are interleaved
// so the requested ratio holds across the whole queue. The queue is empty only
// when the vocabulary itself is empty.
func (b *SessionBuilder) BuildSession(
	ctx context.Context,
	sessionSize int,
	newWordsRatio float64,
	now time.Time,
) ([]string, error) {
	if sessionSize <= 0 || b.wordRepo.Count() == 0 {
		return nil, nil
	}

	records, err := b.progressRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	progress := make(map[string]*entities.WordProgress, len(records))
	for _, p := range records {
		progress[p.WordID] = p
	}

	// Split the vocabulary into attempted and untouched. Progress records for
	// words no longer in the vocabulary are ignored, not deleted.
	var attempted []*entities.WordProgress
	var fresh []string
	for _, w := range b.wordRepo.All() {
		p, ok := progress[w.ID]
		if !ok || p.Attempts() == 0 {
			fresh = append(fresh, w.ID)
			continue
		}
		if b.freezeMastered && p.Phase(b.policy) == entities.PhaseMastered {
			continue
		}
		attempted = append(attempted, p)
	}

	newBudget := int(math.Round(float64(sessionSize) * newWordsRatio))
	reviewBudget := sessionSize - newBudget

	// Review pool: due words, hardest first, most overdue as tiebreak.
	var due []*entities.WordProgress
	for _, p := range attempted {
		if p.IsDue(now) {
			due = append(due, p)
		}
	}
	sortByPriority(due)

	reviews := takeIDs(due, reviewBudget)

	// An undersized review pool donates its slack to the new budget.
	newBudget = sessionSize - len(reviews)

	b.rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	if len(fresh) > newBudget {
		fresh = fresh[:newBudget]
	}

	// Backfill with the next-soonest-due words so a session is only ever
	// smaller than requested when the vocabulary runs out.
	if len(reviews)+len(fresh) < sessionSize {
		var upcoming []*entities.WordProgress
		taken := make(map[string]bool, len(reviews))
		for _, id := range reviews {
			taken[id] = true
		}
		for _, p := range attempted {
			if !taken[p.WordID] && !p.IsDue(now) {
				upcoming = append(upcoming, p)
			}
		}
		sort.Slice(upcoming, func(i, j int) bool {
			if !upcoming[i].DueAt.Equal(upcoming[j].DueAt) {
				return upcoming[i].DueAt.Before(upcoming[j].DueAt)
			}
			return upcoming[i].WordID < upcoming[j].WordID
		})
		reviews = append(reviews, takeIDs(upcoming, sessionSize-len(reviews)-len(fresh))...)
	}

	return interleave(reviews, fresh), nil
}

// sortByPriority orders due records by difficulty descending, then most
// overdue, then by ID so ties are stable across runs.
func sortByPriority(due []*entities.WordProgress) {
	sort.Slice(due, func(i, j int) bool {
		if due[i].DifficultyScore != due[j].DifficultyScore {
			return due[i].DifficultyScore > due[j].DifficultyScore
		}
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].WordID < due[j].WordID
	})
}

func takeIDs(records []*entities.WordProgress, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(records) > n {
		records = records[:n]
	}
	out := make([]string, len(records))
	for i, p := range records {
		out[i] = p.WordID
	}
	return out
}

// interleave spreads fresh words among reviews so neither group clusters at
// one end of the queue. The spread follows the actual group sizes, which
// track the requested ratio.
func interleave(reviews, fresh []string) []string {
	total := len(reviews) + len(fresh)
	if total == 0 {
		return nil
	}

	out := make([]string, 0, total)
	ri, fi := 0, 0
	acc := 0
	for len(out) < total {
		acc += len(fresh)
		takeFresh := ri >= len(reviews) || (fi < len(fresh) && acc >= total)
		if takeFresh {
			out = append(out, fresh[fi])
			fi++
			acc -= total
		} else {
			out = append(out, reviews[ri])
			ri++
		}
	}
	return out
}
