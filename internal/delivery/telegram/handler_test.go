package telegram

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
	"github.com/adilbekov/gre-vocab-bot/internal/service"
	"github.com/adilbekov/gre-vocab-bot/internal/storage"
)

const wordsHeader = "word,definition,part_of_speech,example,word_in_sentence,blanked_example,form\n"

const sampleCSV = wordsHeader +
	"abet,to aid or encourage,verb,They abetted the plan.,abetted,They <BLANK> the plan.,abet\n" +
	"candid,frank and honest,adjective,She gave a candid answer.,candid,She gave a <BLANK> answer.,candid\n" +
	"candor,honesty of expression,noun,He spoke with candor.,candor,He spoke with <BLANK>.,candor\n" +
	"rancor,bitter resentment,noun,The feud bred rancor.,rancor,The feud bred <BLANK>.,rancor\n"

// fakeBot records every Chattable the handler sends.
type fakeBot struct {
	sent    []tgbotapi.Chattable
	fileURL string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	return b.fileURL, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

func (b *fakeBot) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, b.sent)
	msg, ok := b.sent[len(b.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is not a plain message")
	return msg.Text
}

func newTestHandler(t *testing.T) (*Handler, *fakeBot) {
	t.Helper()

	wordRepo := repository.NewEmptyWordRepository()
	require.NoError(t, wordRepo.Load(strings.NewReader(sampleCSV)))

	dir := t.TempDir()
	progressRepo, err := repository.NewFileProgressRepository(filepath.Join(dir, "progress.json"))
	require.NoError(t, err)
	historyRepo, err := repository.NewFileHistoryRepository(filepath.Join(dir, "history.json"))
	require.NoError(t, err)

	policy := entities.DefaultReviewPolicy()
	rng := rand.New(rand.NewSource(1))

	wordService := service.NewWordService(wordRepo)
	progressService := service.NewProgressService(progressRepo, historyRepo, wordRepo, policy)
	builder := service.NewSessionBuilder(wordRepo, progressRepo, policy, false, rng)
	options := service.NewOptionGenerator(wordRepo, rng)
	studyService := service.NewStudyService(
		wordRepo, progressService, builder, options,
		service.NewAnswerValidator(), 10, 0.3,
	)

	bot := &fakeBot{}
	h := NewHandler(
		bot, zap.NewNop(),
		wordService, progressService, studyService,
		storage.NewSessionStorage(), storage.NewQuestionStorage(), storage.NewChatStorage(),
		Settings{SessionSize: 10, NewWordsRatio: 0.3},
	)
	return h, bot
}

func TestTypedAnswerWithoutSession(t *testing.T) {
	h, bot := newTestHandler(t)

	require.NoError(t, h.typedAnswerHandler("honesty")(context.Background(), 42))
	assert.Equal(t, msgNoActiveSession, bot.lastText(t))
}

func TestTypedAnswerDuringQuizSessionHintsAtButtons(t *testing.T) {
	h, bot := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.startSessionHandler(entities.ModeQuiz)(ctx, 42))
	session, ok := h.sessions.Get(42)
	require.True(t, ok)
	require.Equal(t, entities.ModeQuiz, session.Mode)

	require.NoError(t, h.typedAnswerHandler("honesty")(ctx, 42))
	assert.Equal(t, msgAnswerWithButtons, bot.lastText(t))

	_, ok = h.sessions.Get(42)
	assert.True(t, ok, "session survives a stray text message")
}

func TestTypedAnswerInContextMode(t *testing.T) {
	h, bot := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.startSessionHandler(entities.ModeContext)(ctx, 42))
	pending, ok := h.questions.Get(42)
	require.True(t, ok)
	word, err := h.wordService.Get(pending.Question.WordID)
	require.NoError(t, err)

	require.NoError(t, h.typedAnswerHandler(word.WordInSentence)(ctx, 42))
	assert.Contains(t, bot.lastText(t), "Correct")
}

func TestUploadRejectsFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, bot := newTestHandler(t)
	bot.fileURL = srv.URL
	doc := &tgbotapi.Document{FileID: "f1", FileName: "words.csv"}

	require.NoError(t, h.documentHandler(doc)(context.Background(), 42))
	assert.Equal(t, msgUploadFailed, bot.lastText(t))
	assert.Equal(t, 4, h.wordService.Count(), "vocabulary unchanged")
}

func TestUploadReplacesVocabulary(t *testing.T) {
	csv := wordsHeader +
		"laconic,using few words,adjective,His reply was laconic.,laconic,His reply was <BLANK>.,laconic\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(csv))
	}))
	defer srv.Close()

	h, bot := newTestHandler(t)
	bot.fileURL = srv.URL
	doc := &tgbotapi.Document{FileID: "f1", FileName: "words.csv"}

	require.NoError(t, h.documentHandler(doc)(context.Background(), 42))
	assert.Contains(t, bot.lastText(t), "Vocabulary loaded")
	assert.Equal(t, 1, h.wordService.Count())
}

func TestUploadTimesOutOnStalledDownload(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	h, bot := newTestHandler(t)
	bot.fileURL = srv.URL
	doc := &tgbotapi.Document{FileID: "f1", FileName: "words.csv"}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, h.documentHandler(doc)(ctx, 42))
	assert.Equal(t, msgUploadFailed, bot.lastText(t))
}
