package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// ErrNoWordsAvailable means the vocabulary is empty, so no session can start.
var ErrNoWordsAvailable = errors.New("no words available")

// StudyService runs study sessions: it builds the queue, prepares questions
// for the chosen mode and records outcomes.
type StudyService struct {
	wordRepo  WordRepository
	progress  *ProgressService
	builder   *SessionBuilder
	options   *OptionGenerator
	validator *AnswerValidator

	sessionSize   int
	newWordsRatio float64
}

func NewStudyService(
	wordRepo WordRepository,
	progress *ProgressService,
	builder *SessionBuilder,
	options *OptionGenerator,
	validator *AnswerValidator,
	sessionSize int,
	newWordsRatio float64,
) *StudyService {
	return &StudyService{
		wordRepo:      wordRepo,
		progress:      progress,
		builder:       builder,
		options:       options,
		validator:     validator,
		sessionSize:   sessionSize,
		newWordsRatio: newWordsRatio,
	}
}

// StartSession builds a queue and opens a session over it.
func (s *StudyService) StartSession(
	ctx context.Context,
	chatID int64,
	mode entities.StudyMode,
	now time.Time,
) (*entities.StudySession, error) {
	ids, err := s.builder.BuildSession(ctx, s.sessionSize, s.newWordsRatio, now)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoWordsAvailable
	}

	return entities.NewStudySession(chatID, mode, ids, now), nil
}

// CurrentWord resolves the word the session is presenting.
func (s *StudyService) CurrentWord(session *entities.StudySession) (*entities.Word, error) {
	id, ok := session.CurrentWordID()
	if !ok {
		return nil, errors.New("session queue exhausted")
	}
	return s.wordRepo.Get(id)
}

// Question prepares a multiple-choice question for the session's current word
// in quiz or context mode.
func (s *StudyService) Question(session *entities.StudySession) (*entities.Question, error) {
	word, err := s.CurrentWord(session)
	if err != nil {
		return nil, err
	}

	options, correctIndex := s.options.GenerateOptions(word, session.Mode)

	q := &entities.Question{
		WordID:        word.ID,
		Mode:          session.Mode,
		Options:       options,
		CorrectIndex:  correctIndex,
		CorrectAnswer: options[correctIndex],
	}
	if session.Mode == entities.ModeContext {
		q.Prompt = word.BlankedExample
	} else {
		q.Prompt = word.Word
	}
	return q, nil
}

// CheckTypedAnswer validates a typed context-mode answer against the word,
// accepting minor typos.
func (s *StudyService) CheckTypedAnswer(word *entities.Word, answer string) bool {
	if s.validator.Validate(answer, word.Word) {
		return true
	}
	// The inflected form in the sentence is an equally correct fill-in.
	return s.validator.Validate(answer, word.WordInSentence)
}

// SubmitResult records the outcome for the session's current word, advances
// the queue and applies the interval policy.
func (s *StudyService) SubmitResult(
	ctx context.Context,
	session *entities.StudySession,
	correct bool,
	elapsed time.Duration,
	now time.Time,
) (*entities.WordProgress, error) {
	id, ok := session.CurrentWordID()
	if !ok {
		return nil, errors.New("no current word to answer")
	}

	session.RecordResult(correct, elapsed)
	return s.progress.RecordAttempt(ctx, id, correct, elapsed, now)
}

// Complete closes the session, archives its summary and returns it. A session
// quit before the queue is exhausted is recorded as abandoned.
func (s *StudyService) Complete(
	ctx context.Context,
	session *entities.StudySession,
	now time.Time,
) (entities.SessionSummary, error) {
	session.Complete(now)
	if !session.Done() {
		session.Status = entities.SessionAbandoned
	}
	sum := session.Summarize(now)

	if err := s.progress.ArchiveSession(ctx, sum); err != nil {
		return sum, fmt.Errorf("archive session: %w", err)
	}
	return sum, nil
}
