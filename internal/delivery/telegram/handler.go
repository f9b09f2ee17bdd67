package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// Settings is the slice of configuration the /settings view reports.
type Settings struct {
	SessionSize         int
	NewWordsRatio       float64
	FreezeMastered      bool
	MasteryStreak       int
	DifficultyThreshold float64
	ReminderEnabled     bool
	ReminderInterval    time.Duration
	Storage             string
}

type Handler struct {
	bot             BotAPI
	logger          *zap.Logger
	wordService     WordService
	progressService ProgressService
	studyService    StudyService
	sessions        SessionStorage
	questions       QuestionStorage
	chats           ChatStorage
	settings        Settings
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	wordService WordService,
	progressService ProgressService,
	studyService StudyService,
	sessions SessionStorage,
	questions QuestionStorage,
	chats ChatStorage,
	settings Settings,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		wordService:     wordService,
		progressService: progressService,
		studyService:    studyService,
		sessions:        sessions,
		questions:       questions,
		chats:           chats,
		settings:        settings,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("chat_id", update.CallbackQuery.Message.Chat.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	chatID := update.Message.Chat.ID
	h.chats.Store(chatID)

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	if update.Message.Document != nil {
		_ = h.withErrorHandling(h.documentHandler(update.Message.Document))(ctx, chatID)
		return
	}

	msg := newHTMLMessage(chatID, "")

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			msg.Text = msgWelcome
			msg.ReplyMarkup = buildModeKeyboard()
			h.send(msg)

		case "help":
			msg.Text = msgHelp
			h.send(msg)

		case "study":
			_ = h.withErrorHandling(h.startSessionHandler(entities.ModeFlashcard))(ctx, chatID)

		case "quiz":
			_ = h.withErrorHandling(h.startSessionHandler(entities.ModeQuiz))(ctx, chatID)

		case "context":
			_ = h.withErrorHandling(h.startSessionHandler(entities.ModeContext))(ctx, chatID)

		case "quit":
			_ = h.withErrorHandling(h.quitHandler())(ctx, chatID)

		case "progress":
			_ = h.withErrorHandling(h.progressHandler())(ctx, chatID)

		case "search":
			h.handleSearchCommand(chatID, update.Message.CommandArguments())

		case "export":
			_ = h.withErrorHandling(h.exportHandler())(ctx, chatID)

		case "settings":
			h.handleSettingsCommand(chatID)

		default:
			msg.Text = msgUnknownCommand
			h.send(msg)
		}

		return
	}

	// Plain text is treated as a typed answer in context mode.
	_ = h.withErrorHandling(h.typedAnswerHandler(update.Message.Text))(ctx, chatID)
}

// SendDueReminder nudges the learner about pending reviews. It implements
// service.ReminderNotifier.
func (h *Handler) SendDueReminder(chatID int64, dueCount int) error {
	text := "⏰ You have <b>" + pluralWords(dueCount) + "</b> due for review. Start with /study."
	msg := newHTMLMessage(chatID, text)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
