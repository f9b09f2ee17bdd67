package service

import (
	"math/rand"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

const optionCount = 4

// OptionGenerator generates multiple choice options for quiz and context
// questions.
type OptionGenerator struct {
	wordRepo WordRepository
	rng      *rand.Rand
}

// NewOptionGenerator creates a generator; nil rng seeds from the clock via
// the shared rand source.
func NewOptionGenerator(wordRepo WordRepository, rng *rand.Rand) *OptionGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &OptionGenerator{wordRepo: wordRepo, rng: rng}
}

// GenerateOptions builds the option list for a word. Quiz mode offers
// definitions, context mode offers candidate words for the blank. Distractors
// prefer entries sharing the part of speech when enough exist.
// Returns the options and the index of the correct one.
func (g *OptionGenerator) GenerateOptions(correct *entities.Word, mode entities.StudyMode) ([]string, int) {
	correctAnswer := optionText(correct, mode)

	wrongOptions := g.generateWrongOptions(correct, mode, optionCount-1)
	options := make([]string, 0, optionCount)

	correctIndex := g.rng.Intn(len(wrongOptions) + 1)
	options = append(options, wrongOptions[:correctIndex]...)
	options = append(options, correctAnswer)
	options = append(options, wrongOptions[correctIndex:]...)

	return options, correctIndex
}

// generateWrongOptions picks distractors different from the correct answer.
func (g *OptionGenerator) generateWrongOptions(correct *entities.Word, mode entities.StudyMode, count int) []string {
	candidates := make([]*entities.Word, 0, g.wordRepo.Count())
	posMatches := 0
	for _, w := range g.wordRepo.All() {
		if w.ID == correct.ID {
			continue
		}
		candidates = append(candidates, w)
		if w.PartOfSpeech == correct.PartOfSpeech {
			posMatches++
		}
	}

	// Same-part-of-speech distractors make the question harder; use them
	// exclusively when there are enough.
	if posMatches >= count {
		filtered := candidates[:0]
		for _, w := range candidates {
			if w.PartOfSpeech == correct.PartOfSpeech {
				filtered = append(filtered, w)
			}
		}
		candidates = filtered
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	correctText := optionText(correct, mode)
	seen := map[string]bool{correctText: true}
	wrong := make([]string, 0, count)
	for _, w := range candidates {
		if len(wrong) >= count {
			break
		}
		text := optionText(w, mode)
		if seen[text] {
			continue
		}
		seen[text] = true
		wrong = append(wrong, text)
	}

	return wrong
}

func optionText(w *entities.Word, mode entities.StudyMode) string {
	if mode == entities.ModeContext {
		return w.Word
	}
	return w.Definition
}
