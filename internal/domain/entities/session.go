package entities

import "time"

// StudyMode identifies how session words are presented to the learner.
type StudyMode string

const (
	ModeFlashcard StudyMode = "flashcard" // self-graded card flip
	ModeQuiz      StudyMode = "quiz"      // multiple-choice definition quiz
	ModeContext   StudyMode = "context"   // fill-in-the-blank sentence
)

// Session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// AttemptResult is the outcome of a single presented word.
type AttemptResult struct {
	WordID    string
	Correct   bool
	ElapsedMs int64
}

// StudySession is one bounded run through a session queue. The queue is built
// once by the session builder and never mutated afterwards.
type StudySession struct {
	ChatID      int64
	Mode        StudyMode
	WordIDs     []string // ordered queue, no duplicates
	Current     int      // index of the word being presented
	Results     []AttemptResult
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewStudySession creates an active session over the given queue.
func NewStudySession(chatID int64, mode StudyMode, wordIDs []string, now time.Time) *StudySession {
	return &StudySession{
		ChatID:    chatID,
		Mode:      mode,
		WordIDs:   wordIDs,
		Status:    SessionActive,
		StartedAt: now,
	}
}

// CurrentWordID returns the word being presented, or false when the queue is
// exhausted.
func (s *StudySession) CurrentWordID() (string, bool) {
	if s.Current >= len(s.WordIDs) {
		return "", false
	}
	return s.WordIDs[s.Current], true
}

// RecordResult stores the outcome of the current word and advances the queue.
func (s *StudySession) RecordResult(correct bool, elapsed time.Duration) {
	id, ok := s.CurrentWordID()
	if !ok {
		return
	}
	s.Results = append(s.Results, AttemptResult{
		WordID:    id,
		Correct:   correct,
		ElapsedMs: elapsed.Milliseconds(),
	})
	s.Current++
}

// Done reports whether every queued word has been answered.
func (s *StudySession) Done() bool {
	return s.Current >= len(s.WordIDs)
}

// Complete marks the session finished and stamps the completion time.
func (s *StudySession) Complete(now time.Time) {
	s.Status = SessionCompleted
	s.CompletedAt = &now
}

// Question is one prepared multiple-choice prompt for quiz or context mode.
type Question struct {
	WordID        string
	Mode          StudyMode
	Prompt        string
	Options       []string
	CorrectIndex  int
	CorrectAnswer string
}

// SessionSummary aggregates a finished session, persisted to the history
// archive and rendered to the learner.
type SessionSummary struct {
	Mode          StudyMode `json:"mode"`
	TotalWords    int       `json:"total_words"`
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	Accuracy      float64   `json:"accuracy"` // percentage, 0 when nothing answered
	TotalTimeMs   int64     `json:"total_time_ms"`
	AverageTimeMs int64     `json:"average_time_ms"`
	FastestWordID string    `json:"fastest_word_id,omitempty"`
	SlowestWordID string    `json:"slowest_word_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Summarize folds the recorded results into a summary.
func (s *StudySession) Summarize(completedAt time.Time) SessionSummary {
	sum := SessionSummary{
		Mode:        s.Mode,
		TotalWords:  len(s.Results),
		StartedAt:   s.StartedAt,
		CompletedAt: completedAt,
	}

	var fastest, slowest int64
	for _, r := range s.Results {
		if r.Correct {
			sum.Correct++
		} else {
			sum.Incorrect++
		}
		sum.TotalTimeMs += r.ElapsedMs

		if sum.FastestWordID == "" || r.ElapsedMs < fastest {
			sum.FastestWordID, fastest = r.WordID, r.ElapsedMs
		}
		if sum.SlowestWordID == "" || r.ElapsedMs > slowest {
			sum.SlowestWordID, slowest = r.WordID, r.ElapsedMs
		}
	}

	if sum.TotalWords > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.TotalWords) * 100
		sum.AverageTimeMs = sum.TotalTimeMs / int64(sum.TotalWords)
	}
	return sum
}
