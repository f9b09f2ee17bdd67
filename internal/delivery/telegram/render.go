package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/service"
)

// esc escapes vocabulary text for HTML parse mode. Words and sentences come
// from user-supplied CSV and may contain markup characters.
func esc(s string) string {
	return html.EscapeString(s)
}

// renderCardFront renders the question side of a flashcard.
func renderCardFront(word *entities.Word, position, total int) string {
	return fmt.Sprintf(
		"📇 <b>Card %d of %d</b>\n\n<b>%s</b> <i>(%s)</i>\n\nDo you remember the definition?",
		position, total,
		esc(word.Word), esc(word.PartOfSpeech),
	)
}

// renderCardBack renders the revealed side of a flashcard.
func renderCardBack(word *entities.Word, position, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📇 <b>Card %d of %d</b>\n\n<b>%s</b> <i>(%s)</i>\n\n", position, total, esc(word.Word), esc(word.PartOfSpeech))
	fmt.Fprintf(&b, "<b>Definition:</b> %s\n", esc(word.Definition))
	if word.Example != "" {
		fmt.Fprintf(&b, "<b>Example:</b> %s\n", esc(word.Example))
	}
	if word.Form != "" && word.Form != word.Word {
		fmt.Fprintf(&b, "<b>Form:</b> %s\n", esc(word.Form))
	}
	b.WriteString("\nDid you know it?")
	return b.String()
}

// renderQuestion renders a quiz or context prompt. The options themselves
// live on the inline keyboard.
func renderQuestion(q *entities.Question, position, total int) string {
	if q.Mode == entities.ModeContext {
		return fmt.Sprintf(
			"✍️ <b>Question %d of %d</b>\n\n%s\n\nPick the missing word, or type it.",
			position, total, esc(q.Prompt),
		)
	}
	return fmt.Sprintf(
		"❓ <b>Question %d of %d</b>\n\nWhat does <b>%s</b> mean?",
		position, total, esc(q.Prompt),
	)
}

// renderFeedback renders the outcome of one answer with the next review time.
func renderFeedback(correct bool, word *entities.Word, p *entities.WordProgress, now time.Time) string {
	var b strings.Builder
	if correct {
		fmt.Fprintf(&b, "✅ <b>Correct!</b> Streak: %d\n\n", p.Streak)
	} else {
		fmt.Fprintf(&b, "❌ <b>Not quite.</b>\n\n")
	}
	fmt.Fprintf(&b, "<b>%s</b> <i>(%s)</i> — %s\n", esc(word.Word), esc(word.PartOfSpeech), esc(word.Definition))
	if !correct && word.Example != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", esc(word.Example))
	}
	fmt.Fprintf(&b, "\nNext review in %s.", humanizeDuration(p.DueAt.Sub(now)))
	return b.String()
}

// renderSummary renders the end-of-session report.
func renderSummary(sum entities.SessionSummary, fastest, slowest *entities.Word) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Session complete</b>\n\n")
	fmt.Fprintf(&b, "Words answered: <b>%d</b>\n", sum.TotalWords)
	fmt.Fprintf(&b, "Correct: <b>%d</b> · Incorrect: <b>%d</b>\n", sum.Correct, sum.Incorrect)
	if sum.TotalWords > 0 {
		fmt.Fprintf(&b, "Accuracy: <b>%.0f%%</b>\n", sum.Accuracy)
		fmt.Fprintf(&b, "Average answer time: <b>%.1fs</b>\n", float64(sum.AverageTimeMs)/1000)
	}
	if fastest != nil {
		fmt.Fprintf(&b, "Fastest word: <b>%s</b>\n", esc(fastest.Word))
	}
	if slowest != nil && (fastest == nil || slowest.ID != fastest.ID) {
		fmt.Fprintf(&b, "Slowest word: <b>%s</b>\n", esc(slowest.Word))
	}
	b.WriteString("\nStart another round with /study, /quiz or /context.")
	return b.String()
}

// renderStatistics renders the /progress view.
func renderStatistics(stats *service.Statistics) string {
	bar := buildProgressBar(stats.Mastered, stats.TotalWordsSeen, 20)

	return fmt.Sprintf(
		"<b>📊 Your progress</b>\n\n"+
			"%s\n\n"+
			"🏆 <b>Mastered:</b> %d / %d\n"+
			"📖 <b>Learning:</b> %d\n"+
			"🔁 <b>Struggling:</b> %d\n"+
			"🔥 <b>Difficult:</b> %d\n\n"+
			"🎯 <b>Accuracy:</b> %.1f%%\n"+
			"📐 <b>Average difficulty:</b> %.1f\n"+
			"🗓 <b>Day streak:</b> %d\n"+
			"✅ <b>Sessions completed:</b> %d\n",
		bar,
		stats.Mastered, stats.TotalWordsSeen,
		stats.Learning,
		stats.Struggling,
		stats.Difficult,
		stats.AccuracyRate,
		stats.AverageDifficulty,
		stats.DayStreak,
		stats.SessionsCompleted,
	)
}

// renderSearchResults renders up to limit matches for /search.
func renderSearchResults(query string, words []*entities.Word, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🔎 Results for “%s”</b>\n\n", esc(query))

	shown := len(words)
	if shown > limit {
		shown = limit
	}
	for _, w := range words[:shown] {
		fmt.Fprintf(&b, "<b>%s</b> <i>(%s)</i> — %s\n", esc(w.Word), esc(w.PartOfSpeech), esc(w.Definition))
	}
	if len(words) > limit {
		fmt.Fprintf(&b, "\n…and %d more.", len(words)-limit)
	}
	return b.String()
}

// buildProgressBar creates ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
	return fmt.Sprintf("[%s]", bar)
}

// humanizeDuration formats an interval the way a learner reads it.
func humanizeDuration(d time.Duration) string {
	if d < time.Hour {
		m := int(d.Minutes())
		if m < 1 {
			m = 1
		}
		return fmt.Sprintf("%dm", m)
	}
	if d < 48*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()+0.5))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24+0.5))
}
