package entities

import "time"

// Phase represents a learning phase of a word, derived from its counters.
type Phase string

const (
	PhaseNew        Phase = "new"        // never answered
	PhaseStruggling Phase = "struggling" // answered, but the streak is broken
	PhaseLearning   Phase = "learning"   // short streak of correct answers
	PhaseMastered   Phase = "mastered"   // streak reached the mastery threshold
)

// ReviewPolicy holds the tunable knobs of the scheduling policy.
type ReviewPolicy struct {
	DifficultyIncrement float64 // added to the score on an incorrect answer
	DifficultyDecay     float64 // subtracted from the score on a correct answer
	DifficultyMax       float64 // upper bound of the score
	DifficultyThreshold float64 // score at which a word counts as difficult
	MasteryStreak       int     // streak at which a word counts as mastered
}

// DefaultReviewPolicy returns the policy the trainer ships with.
func DefaultReviewPolicy() ReviewPolicy {
	return ReviewPolicy{
		DifficultyIncrement: 2,
		DifficultyDecay:     1,
		DifficultyMax:       10,
		DifficultyThreshold: 7,
		MasteryStreak:       3,
	}
}

// WordProgress stores the learning state of a single word.
type WordProgress struct {
	WordID string `json:"-"` // map key in the persisted file

	CorrectCount    int        `json:"correct_count"`
	IncorrectCount  int        `json:"incorrect_count"`
	Streak          int        `json:"streak"` // consecutive correct answers since the last miss
	DueAt           time.Time  `json:"due_at"`
	LastSeenAt      *time.Time `json:"last_seen_at"` // nil until the first attempt
	DifficultyScore float64    `json:"difficulty_score"`
	TotalTimeMs     int64      `json:"total_time_ms"`
	ReviewCount     int        `json:"review_count"`
}

// NewWordProgress creates a zeroed progress record that is due immediately.
func NewWordProgress(wordID string, now time.Time) *WordProgress {
	return &WordProgress{
		WordID: wordID,
		DueAt:  now,
	}
}

// NextReviewAt is the interval policy: it maps the outcome and the counters of
// a record to the next due timestamp. The counters must already include the
// attempt being scheduled, so a first-ever correct answer lands on the
// streak==1 row. Any miss, and any net-struggling word, comes back the same
// day. Deterministic; same inputs always give the same output.
func NextReviewAt(wasCorrect bool, correctCount, incorrectCount, streak int, now time.Time) time.Time {
	var hours int
	switch {
	case !wasCorrect, incorrectCount > correctCount:
		hours = 4
	case streak == 0:
		hours = 12
	case streak == 1:
		hours = 24
	case streak == 2:
		hours = 72
	default:
		hours = 168
	}
	return now.Add(time.Duration(hours) * time.Hour)
}

// Apply records one answered attempt: it updates the counters, the streak, the
// difficulty score and the due timestamp. Exactly one Apply call corresponds
// to one attempt.
func (p *WordProgress) Apply(policy ReviewPolicy, correct bool, elapsed time.Duration, now time.Time) {
	if correct {
		p.CorrectCount++
		p.Streak++
		p.DifficultyScore = max(0, p.DifficultyScore-policy.DifficultyDecay)
	} else {
		p.IncorrectCount++
		p.Streak = 0
		p.DifficultyScore = min(policy.DifficultyMax, p.DifficultyScore+policy.DifficultyIncrement)
	}

	p.LastSeenAt = &now
	p.TotalTimeMs += elapsed.Milliseconds()
	p.ReviewCount++
	p.DueAt = NextReviewAt(correct, p.CorrectCount, p.IncorrectCount, p.Streak, now)
}

// Attempts returns the total number of recorded attempts.
func (p *WordProgress) Attempts() int {
	return p.CorrectCount + p.IncorrectCount
}

// IsDue reports whether the word is eligible for review at the given time.
func (p *WordProgress) IsDue(now time.Time) bool {
	return !p.DueAt.After(now)
}

// Phase classifies the record. Difficulty is an independent axis, see
// IsDifficult.
func (p *WordProgress) Phase(policy ReviewPolicy) Phase {
	switch {
	case p.Attempts() == 0:
		return PhaseNew
	case p.Streak >= policy.MasteryStreak:
		return PhaseMastered
	case p.Streak > 0:
		return PhaseLearning
	default:
		return PhaseStruggling
	}
}

// IsDifficult reports whether the word's score reached the difficulty
// threshold. A word can be both mastered and difficult.
func (p *WordProgress) IsDifficult(policy ReviewPolicy) bool {
	return p.DifficultyScore >= policy.DifficultyThreshold
}
