package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	h.chats.Store(chatID)

	data := decodeCallback(cb.Data)

	switch data.Action {
	case actionStudy:
		mode := entities.StudyMode(data.param(0))
		switch mode {
		case entities.ModeFlashcard, entities.ModeQuiz, entities.ModeContext:
			_ = h.withErrorHandling(h.startSessionHandler(mode))(ctx, chatID)
		default:
			h.logger.Warn("unknown study mode in callback", zap.String("data", data.Raw))
		}

	case actionFlash:
		_ = h.withErrorHandling(h.flashcardCallback(data.param(0), messageID))(ctx, chatID)

	case actionAnswer:
		_ = h.withErrorHandling(h.answerCallback(data.param(0), messageID))(ctx, chatID)

	case actionNext:
		_ = h.withErrorHandling(func(ctx context.Context, chatID int64) error {
			return h.advance(ctx, chatID, messageID)
		})(ctx, chatID)

	case actionQuit:
		_ = h.withErrorHandling(func(ctx context.Context, chatID int64) error {
			return h.finishSession(ctx, chatID, messageID)
		})(ctx, chatID)

	default:
		h.logger.Debug("unknown callback action", zap.String("data", data.Raw))
	}

	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(cb.ID, "")
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Error("callback answer error", zap.Error(err))
	}
}

// flashcardCallback handles the show/yes/no flow of a flashcard.
func (h *Handler) flashcardCallback(sub string, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		session, ok := h.sessions.Get(chatID)
		if !ok {
			h.sendError(chatID, msgNoActiveSession)
			return nil
		}

		switch sub {
		case flashShow:
			word, err := h.studyService.CurrentWord(session)
			if err != nil {
				return err
			}
			if pending, ok := h.questions.Get(chatID); ok {
				pending.Revealed = true
			}
			h.present(chatID, messageID, renderCardBack(word, session.Current+1, len(session.WordIDs)), buildFlashcardKeyboard(true))
			return nil

		case flashYes:
			return h.submitResult(ctx, chatID, messageID, true)

		case flashNo:
			return h.submitResult(ctx, chatID, messageID, false)

		default:
			h.logger.Warn("unknown flashcard action", zap.String("sub", sub))
			return nil
		}
	}
}

// answerCallback handles a picked multiple-choice option.
func (h *Handler) answerCallback(indexStr string, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		pending, ok := h.questions.Get(chatID)
		if !ok {
			return nil // stale keyboard from an earlier question
		}

		idx, err := strconv.Atoi(indexStr)
		if err != nil || idx < 0 || idx >= len(pending.Question.Options) {
			h.logger.Warn("invalid answer index in callback", zap.String("index", indexStr))
			return nil
		}

		correct := idx == pending.Question.CorrectIndex
		return h.submitResult(ctx, chatID, messageID, correct)
	}
}
