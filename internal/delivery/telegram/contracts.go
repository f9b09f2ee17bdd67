package telegram

import (
	"context"
	"io"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/service"
	"github.com/adilbekov/gre-vocab-bot/internal/storage"
)

// BotAPI is the slice of the Telegram client the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type WordService interface {
	Get(id string) (*entities.Word, error)
	Search(query string) []*entities.Word
	Count() int
	Load(src io.Reader) error
}

type ProgressService interface {
	GetStatistics(ctx context.Context, now time.Time) (*service.Statistics, error)
	ExportDifficultWords(ctx context.Context, w io.Writer) (int, error)
}

type StudyService interface {
	StartSession(ctx context.Context, chatID int64, mode entities.StudyMode, now time.Time) (*entities.StudySession, error)
	CurrentWord(session *entities.StudySession) (*entities.Word, error)
	Question(session *entities.StudySession) (*entities.Question, error)
	CheckTypedAnswer(word *entities.Word, answer string) bool
	SubmitResult(ctx context.Context, session *entities.StudySession, correct bool, elapsed time.Duration, now time.Time) (*entities.WordProgress, error)
	Complete(ctx context.Context, session *entities.StudySession, now time.Time) (entities.SessionSummary, error)
}

type SessionStorage interface {
	Store(chatID int64, session *entities.StudySession)
	Get(chatID int64) (*entities.StudySession, bool)
	Delete(chatID int64)
}

type QuestionStorage interface {
	Store(chatID int64, q *storage.PendingQuestion)
	Get(chatID int64) (*storage.PendingQuestion, bool)
	Delete(chatID int64)
}

type ChatStorage interface {
	Store(chatID int64)
	Get() (int64, bool)
}
