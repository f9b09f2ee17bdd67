package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
	"github.com/adilbekov/gre-vocab-bot/internal/service"
	"github.com/adilbekov/gre-vocab-bot/internal/storage"
)

const searchResultLimit = 10

// downloadClient fetches uploaded documents. The update loop is single
// threaded, so a stalled download must not hang it.
var downloadClient = &http.Client{Timeout: 30 * time.Second}

// startSessionHandler opens a session in the given mode and presents the
// first word.
func (h *Handler) startSessionHandler(mode entities.StudyMode) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, ok := h.sessions.Get(chatID); ok {
			h.sendError(chatID, msgSessionInProgress)
			return nil
		}
		if h.wordService.Count() == 0 {
			h.sendError(chatID, msgNoVocabulary)
			return nil
		}

		session, err := h.studyService.StartSession(ctx, chatID, mode, time.Now())
		if errors.Is(err, service.ErrNoWordsAvailable) {
			h.sendError(chatID, msgNothingToStudy)
			return nil
		}
		if err != nil {
			return err
		}

		h.sessions.Store(chatID, session)

		h.logger.Info("session started",
			zap.Int64("chat_id", chatID),
			zap.String("mode", string(mode)),
			zap.Int("queue", len(session.WordIDs)),
		)

		return h.presentCurrent(ctx, chatID, session, 0)
	}
}

// presentCurrent shows the session's current word. When messageID is zero a
// new message is sent, otherwise that message is edited in place.
func (h *Handler) presentCurrent(_ context.Context, chatID int64, session *entities.StudySession, messageID int) error {
	word, err := h.studyService.CurrentWord(session)
	if err != nil {
		return err
	}

	position := session.Current + 1
	total := len(session.WordIDs)

	var (
		text string
		kb   tgbotapi.InlineKeyboardMarkup
		q    *entities.Question
	)

	if session.Mode == entities.ModeFlashcard {
		text = renderCardFront(word, position, total)
		kb = buildFlashcardKeyboard(false)
		q = &entities.Question{
			WordID:        word.ID,
			Mode:          session.Mode,
			Prompt:        word.Word,
			CorrectAnswer: word.Definition,
		}
	} else {
		q, err = h.studyService.Question(session)
		if err != nil {
			return err
		}
		text = renderQuestion(q, position, total)
		kb = buildAnswerKeyboard(q.Options)
	}

	h.questions.Store(chatID, &storage.PendingQuestion{
		Question: q,
		ShownAt:  time.Now(),
	})

	h.present(chatID, messageID, text, kb)
	return nil
}

// submitResult records the answer for the current word and shows feedback.
func (h *Handler) submitResult(ctx context.Context, chatID int64, messageID int, correct bool) error {
	session, ok := h.sessions.Get(chatID)
	if !ok {
		h.sendError(chatID, msgNoActiveSession)
		return nil
	}
	pending, ok := h.questions.Get(chatID)
	if !ok {
		return nil
	}

	word, err := h.wordService.Get(pending.Question.WordID)
	if err != nil {
		return err
	}

	now := time.Now()
	elapsed := now.Sub(pending.ShownAt)

	p, err := h.studyService.SubmitResult(ctx, session, correct, elapsed, now)
	if err != nil {
		// The attempt is applied in memory even when the write failed. Keep
		// the session going and let the next save retry.
		h.logger.Error("failed to persist attempt",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
	if p == nil {
		return err
	}

	h.questions.Delete(chatID)

	text := renderFeedback(correct, word, p, now)
	h.present(chatID, messageID, text, buildNextKeyboard())
	return nil
}

// advance moves to the next word or closes the session when the queue is
// exhausted.
func (h *Handler) advance(ctx context.Context, chatID int64, messageID int) error {
	session, ok := h.sessions.Get(chatID)
	if !ok {
		h.sendError(chatID, msgNoActiveSession)
		return nil
	}
	if session.Done() {
		return h.finishSession(ctx, chatID, messageID)
	}
	return h.presentCurrent(ctx, chatID, session, messageID)
}

// finishSession completes the active session and shows the summary.
func (h *Handler) finishSession(ctx context.Context, chatID int64, messageID int) error {
	session, ok := h.sessions.Get(chatID)
	if !ok {
		h.sendError(chatID, msgNoActiveSession)
		return nil
	}

	h.sessions.Delete(chatID)
	h.questions.Delete(chatID)

	sum, err := h.studyService.Complete(ctx, session, time.Now())
	if err != nil {
		h.logger.Error("failed to archive session",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	var fastest, slowest *entities.Word
	if sum.FastestWordID != "" {
		fastest, _ = h.wordService.Get(sum.FastestWordID)
	}
	if sum.SlowestWordID != "" {
		slowest, _ = h.wordService.Get(sum.SlowestWordID)
	}

	h.present(chatID, messageID, renderSummary(sum, fastest, slowest), tgbotapi.InlineKeyboardMarkup{})

	h.logger.Info("session finished",
		zap.Int64("chat_id", chatID),
		zap.String("status", session.Status),
		zap.Int("answered", sum.TotalWords),
		zap.Int("correct", sum.Correct),
	)
	return nil
}

func (h *Handler) quitHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, ok := h.sessions.Get(chatID); !ok {
			h.sendError(chatID, msgNoActiveSession)
			return nil
		}
		return h.finishSession(ctx, chatID, 0)
	}
}

// typedAnswerHandler checks plain text against the pending context question.
func (h *Handler) typedAnswerHandler(text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		session, ok := h.sessions.Get(chatID)
		if !ok {
			h.sendError(chatID, msgNoActiveSession)
			return nil
		}
		if session.Mode != entities.ModeContext {
			h.sendError(chatID, msgAnswerWithButtons)
			return nil
		}
		pending, ok := h.questions.Get(chatID)
		if !ok {
			return nil
		}

		word, err := h.wordService.Get(pending.Question.WordID)
		if err != nil {
			return err
		}

		correct := h.studyService.CheckTypedAnswer(word, text)
		return h.submitResult(ctx, chatID, 0, correct)
	}
}

func (h *Handler) progressHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		stats, err := h.progressService.GetStatistics(ctx, time.Now())
		if err != nil {
			h.sendError(chatID, msgProgressUnavail)
			return err
		}
		h.send(newHTMLMessage(chatID, renderStatistics(stats)))
		return nil
	}
}

func (h *Handler) handleSearchCommand(chatID int64, args string) {
	query := strings.TrimSpace(args)
	if query == "" {
		h.sendError(chatID, msgSearchUsage)
		return
	}
	if h.wordService.Count() == 0 {
		h.sendError(chatID, msgNoVocabulary)
		return
	}

	results := h.wordService.Search(query)
	if len(results) == 0 {
		h.sendError(chatID, msgSearchNoResults)
		return
	}

	h.send(newHTMLMessage(chatID, renderSearchResults(query, results, searchResultLimit)))
}

func (h *Handler) exportHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		var buf bytes.Buffer
		n, err := h.progressService.ExportDifficultWords(ctx, &buf)
		if err != nil {
			return err
		}
		if n == 0 {
			h.sendError(chatID, msgExportEmpty)
			return nil
		}

		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  "difficult_words.csv",
			Bytes: buf.Bytes(),
		})
		doc.Caption = fmt.Sprintf("%d difficult words, hardest first.", n)
		h.send(doc)
		return nil
	}
}

func (h *Handler) handleSettingsCommand(chatID int64) {
	s := h.settings
	text := fmt.Sprintf(
		"<b>⚙️ Settings</b>\n\n"+
			"📚 <b>Session size:</b> %d\n"+
			"🆕 <b>New words ratio:</b> %.0f%%\n"+
			"🧊 <b>Freeze mastered:</b> %s\n"+
			"🏆 <b>Mastery streak:</b> %d\n"+
			"🔥 <b>Difficulty threshold:</b> %.0f\n"+
			"⏰ <b>Reminders:</b> %s\n"+
			"💾 <b>Storage:</b> %s\n\n"+
			"Edit config/config.yaml to change these.",
		s.SessionSize,
		s.NewWordsRatio*100,
		formatBool(s.FreezeMastered),
		s.MasteryStreak,
		s.DifficultyThreshold,
		formatReminder(s.ReminderEnabled, s.ReminderInterval),
		s.Storage,
	)
	h.send(newHTMLMessage(chatID, text))
}

// documentHandler replaces the vocabulary from an uploaded CSV.
func (h *Handler) documentHandler(doc *tgbotapi.Document) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") {
			h.sendError(chatID, msgUploadNotCSV)
			return nil
		}

		url, err := h.bot.GetFileDirectURL(doc.FileID)
		if err != nil {
			return fmt.Errorf("resolve file url: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build download request: %w", err)
		}
		resp, err := downloadClient.Do(req)
		if err != nil {
			h.logger.Error("failed to download document", zap.Error(err))
			h.sendError(chatID, msgUploadFailed)
			return nil
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			h.logger.Error("failed to download document",
				zap.Int("status", resp.StatusCode),
			)
			h.sendError(chatID, msgUploadFailed)
			return nil
		}

		if err := h.wordService.Load(resp.Body); err != nil {
			var vErr *repository.ValidationError
			if errors.As(err, &vErr) {
				h.sendError(chatID, "Invalid CSV: "+esc(vErr.Error()))
				return nil
			}
			return fmt.Errorf("load vocabulary: %w", err)
		}

		count := h.wordService.Count()
		h.logger.Info("vocabulary replaced",
			zap.Int64("chat_id", chatID),
			zap.Int("words", count),
		)
		h.send(newHTMLMessage(chatID, fmt.Sprintf(
			"✅ Vocabulary loaded: <b>%s</b>.\nYour progress on unchanged words is preserved.",
			pluralWords(count),
		)))
		return nil
	}
}

// present sends a new message or edits an existing one in place.
func (h *Handler) present(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		msg := newHTMLMessage(chatID, text)
		if len(kb.InlineKeyboard) > 0 {
			msg.ReplyMarkup = kb
		}
		h.send(msg)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if len(kb.InlineKeyboard) > 0 {
		edit.ReplyMarkup = &kb
	}
	h.send(edit)
}

func pluralWords(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}

func formatBool(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatReminder(enabled bool, interval time.Duration) string {
	if !enabled {
		return "off"
	}
	return "every " + interval.String()
}
