package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
)

func newTestStudyService(t *testing.T, words *repository.WordRepository, size int, ratio float64) (*StudyService, *repository.FileHistoryRepository) {
	t.Helper()

	progress := newTestProgressRepo(t)
	history := newTestHistoryRepo(t)
	policy := entities.DefaultReviewPolicy()
	rng := rand.New(rand.NewSource(1))

	progressSvc := NewProgressService(progress, history, words, policy)
	builder := NewSessionBuilder(words, progress, policy, false, rng)
	options := NewOptionGenerator(words, rng)

	svc := NewStudyService(words, progressSvc, builder, options, NewAnswerValidator(), size, ratio)
	return svc, history
}

func TestStudySessionLifecycle(t *testing.T) {
	ctx := context.Background()
	words := newTestVocabulary(t, 12)
	svc, history := newTestStudyService(t, words, 5, 0.4)

	session, err := svc.StartSession(ctx, 42, entities.ModeQuiz, builderNow)
	require.NoError(t, err)
	require.Len(t, session.WordIDs, 5)

	now := builderNow
	for !session.Done() {
		q, err := svc.Question(session)
		require.NoError(t, err)
		require.Len(t, q.Options, 4)
		assert.Equal(t, q.Options[q.CorrectIndex], q.CorrectAnswer)

		word, err := svc.CurrentWord(session)
		require.NoError(t, err)
		assert.Equal(t, word.ID, q.WordID)
		assert.Equal(t, word.Word, q.Prompt)

		p, err := svc.SubmitResult(ctx, session, true, 2*time.Second, now)
		require.NoError(t, err)
		assert.Equal(t, 1, p.CorrectCount)

		now = now.Add(time.Minute)
	}

	sum, err := svc.Complete(ctx, session, now)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionCompleted, session.Status)
	assert.Equal(t, 5, sum.TotalWords)
	assert.Equal(t, 5, sum.Correct)
	assert.Equal(t, 100.0, sum.Accuracy)

	archived, err := history.All(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, 5, archived[0].TotalWords)
}

func TestStudySessionAbandoned(t *testing.T) {
	ctx := context.Background()
	words := newTestVocabulary(t, 12)
	svc, _ := newTestStudyService(t, words, 5, 0.4)

	session, err := svc.StartSession(ctx, 42, entities.ModeFlashcard, builderNow)
	require.NoError(t, err)

	_, err = svc.SubmitResult(ctx, session, false, time.Second, builderNow)
	require.NoError(t, err)

	sum, err := svc.Complete(ctx, session, builderNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, entities.SessionAbandoned, session.Status)
	assert.Equal(t, 1, sum.TotalWords)
}

func TestStudyContextQuestionUsesBlankedExample(t *testing.T) {
	ctx := context.Background()
	words := newTestVocabulary(t, 12)
	svc, _ := newTestStudyService(t, words, 3, 1)

	session, err := svc.StartSession(ctx, 42, entities.ModeContext, builderNow)
	require.NoError(t, err)

	q, err := svc.Question(session)
	require.NoError(t, err)

	word, err := svc.CurrentWord(session)
	require.NoError(t, err)
	assert.Equal(t, word.BlankedExample, q.Prompt)
	assert.Equal(t, word.Word, q.CorrectAnswer)
}

func TestStudyStartSessionEmptyVocabulary(t *testing.T) {
	svc, _ := newTestStudyService(t, repository.NewEmptyWordRepository(), 5, 0.4)

	_, err := svc.StartSession(context.Background(), 42, entities.ModeQuiz, builderNow)
	assert.ErrorIs(t, err, ErrNoWordsAvailable)
}

func TestCheckTypedAnswerAcceptsInflectedForm(t *testing.T) {
	words := newTestVocabulary(t, 3)
	svc, _ := newTestStudyService(t, words, 3, 1)

	word, err := words.Get(testWordID(0))
	require.NoError(t, err)

	assert.True(t, svc.CheckTypedAnswer(word, word.Word))
	assert.True(t, svc.CheckTypedAnswer(word, word.WordInSentence))
	assert.False(t, svc.CheckTypedAnswer(word, "something else"))
}
