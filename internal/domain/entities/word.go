// Package entities contains domain entities used across the application.
package entities

import (
	"github.com/google/uuid"
)

// wordIDNamespace is a fixed namespace for deriving word IDs. Changing it
// would orphan every existing progress record.
var wordIDNamespace = uuid.MustParse("9f2c1a4e-5b8d-4c6f-9e3a-7d1b2c4e6f80")

// Word represents a single vocabulary entry loaded from the CSV file.
// Entries are immutable after load.
type Word struct {
	ID             string `json:"id"`               // content-derived unique identifier
	Word           string `json:"word"`             // the vocabulary word itself
	Definition     string `json:"definition"`       // dictionary definition
	PartOfSpeech   string `json:"part_of_speech"`   // noun, verb, adjective etc.
	Example        string `json:"example"`          // example sentence using the word
	WordInSentence string `json:"word_in_sentence"` // inflected form as it appears in the example
	BlankedExample string `json:"blanked_example"`  // example with the word replaced by <BLANK>
	Form           string `json:"form"`             // word form disambiguating homographs
}

// WordID derives a stable identifier from the word content, so re-uploading
// the same CSV produces the same IDs and progress keyed by ID survives.
func WordID(word, form string) string {
	return uuid.NewSHA1(wordIDNamespace, []byte(word+"\x00"+form)).String()
}
