// messages.go contains message templates and formatting helpers for Telegram.

package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	msgWelcome = "<b>📚 GRE Vocabulary Trainer</b>\n\n" +
		"I schedule your vocabulary reviews so you see hard words often and easy words rarely.\n\n" +
		"/study — flashcard session\n" +
		"/quiz — multiple-choice quiz\n" +
		"/context — fill-in-the-blank\n" +
		"/progress — your statistics\n" +
		"/search &lt;text&gt; — find a word\n" +
		"/export — difficult words as CSV\n" +
		"/help — all commands\n\n" +
		"You can also upload a vocabulary CSV as a document."

	msgHelp = "<b>Commands</b>\n\n" +
		"/study — start a flashcard session\n" +
		"/quiz — start a multiple-choice quiz\n" +
		"/context — fill in the blanked sentence\n" +
		"/quit — finish the current session\n" +
		"/progress — statistics and day streak\n" +
		"/search &lt;text&gt; — search word and definitions\n" +
		"/export — export difficult words as CSV\n" +
		"/settings — show active configuration\n\n" +
		"Upload a CSV document with the columns\n" +
		"<code>word,definition,part_of_speech,example,word_in_sentence,blanked_example,form</code>\n" +
		"to replace the vocabulary. Progress is kept per word."
)

// Error and notice messages.
const (
	msgNoVocabulary      = "No vocabulary loaded yet. Upload a CSV document to begin."
	msgNoActiveSession   = "No active session. Start one with /study, /quiz or /context."
	msgAnswerWithButtons = "Use the buttons under the card to answer. Typed answers work in /context mode."
	msgSessionInProgress = "A session is already running. Finish it or send /quit."
	msgNothingToStudy    = "Nothing to study right now — the vocabulary is empty."
	msgProgressUnavail   = "Could not load your progress. Try again later."
	msgExportEmpty       = "No difficult words to export — nothing has reached the threshold."
	msgSearchUsage       = "Usage: /search <text>"
	msgSearchNoResults   = "No words match that query."
	msgUploadNotCSV      = "Please upload a .csv file."
	msgUploadFailed      = "Could not read the uploaded file. Try again."
	msgInternalError     = "Something went wrong. Try again later."
	msgUnknownCommand    = "Unknown command. See /help for the list of commands."
)

// newHTMLMessage creates a message with HTML parse mode.
func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// buildModeKeyboard offers the three study modes.
func buildModeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📇 Flashcards", callbackData{Action: actionStudy, Params: []string{"flashcard"}}.encode()),
			tgbotapi.NewInlineKeyboardButtonData("❓ Quiz", callbackData{Action: actionStudy, Params: []string{"quiz"}}.encode()),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Context", callbackData{Action: actionStudy, Params: []string{"context"}}.encode()),
		),
	)
}

// buildAnswerKeyboard builds one button per option, plus a quit row.
func buildAnswerKeyboard(options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for i, opt := range options {
		label := string(rune('A'+i)) + ". " + truncateLabel(opt, 56)
		data := callbackData{Action: actionAnswer, Params: []string{strconv.Itoa(i)}}.encode()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	rows = append(rows, quitRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buildFlashcardKeyboard(revealed bool) tgbotapi.InlineKeyboardMarkup {
	if !revealed {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Show definition", callbackData{Action: actionFlash, Params: []string{flashShow}}.encode()),
			),
			quitRow(),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Knew it", callbackData{Action: actionFlash, Params: []string{flashYes}}.encode()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Didn't", callbackData{Action: actionFlash, Params: []string{flashNo}}.encode()),
		),
		quitRow(),
	)
}

func buildNextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Next ▶", callbackData{Action: actionNext}.encode()),
		),
		quitRow(),
	)
}

func quitRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Finish session", callbackData{Action: actionQuit}.encode()),
	)
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
