package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// wordColumns is the exact CSV header the trainer accepts, in order.
var wordColumns = []string{
	"word",
	"definition",
	"part_of_speech",
	"example",
	"word_in_sentence",
	"blanked_example",
	"form",
}

// WordRepository holds the vocabulary set for the current session. The set is
// immutable between loads; Load swaps it atomically only after the whole file
// validated.
type WordRepository struct {
	mu    sync.RWMutex
	words []*entities.Word
	byID  map[string]*entities.Word
}

// NewWordRepository creates a repository loaded from the CSV file at path.
func NewWordRepository(path string) (*WordRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer f.Close()

	r := &WordRepository{}
	if err := r.Load(f); err != nil {
		return nil, err
	}
	return r, nil
}

// NewEmptyWordRepository creates a repository with no vocabulary yet. Words
// arrive later through Load when the learner uploads a CSV.
func NewEmptyWordRepository() *WordRepository {
	return &WordRepository{byID: make(map[string]*entities.Word)}
}

// Load parses and validates a vocabulary CSV. On the first invalid cell it
// returns a ValidationError and leaves the current set untouched.
func (r *WordRepository) Load(src io.Reader) error {
	words, byID, err := parseWordsCSV(src)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.words = words
	r.byID = byID
	return nil
}

// Get retrieves a word by its ID, or ErrWordNotFound.
func (r *WordRepository) Get(id string) (*entities.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.byID[id]
	if !ok {
		return nil, ErrWordNotFound
	}
	return w, nil
}

// All returns every word in insertion order.
func (r *WordRepository) All() []*entities.Word {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Word, len(r.words))
	copy(out, r.words)
	return out
}

// Search finds entries whose word or definition contains the query,
// case-insensitively. Matches in the word rank before matches in the
// definition, each ordered by match position; ties keep insertion order.
func (r *WordRepository) Search(query string) []*entities.Word {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type match struct {
		word   *entities.Word
		inWord bool
		pos    int
	}

	var matches []match
	for _, w := range r.words {
		if p := strings.Index(strings.ToLower(w.Word), q); p >= 0 {
			matches = append(matches, match{w, true, p})
		} else if p := strings.Index(strings.ToLower(w.Definition), q); p >= 0 {
			matches = append(matches, match{w, false, p})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].inWord != matches[j].inWord {
			return matches[i].inWord
		}
		return matches[i].pos < matches[j].pos
	})

	out := make([]*entities.Word, len(matches))
	for i, m := range matches {
		out[i] = m.word
	}
	return out
}

// Count returns the size of the loaded vocabulary.
func (r *WordRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.words)
}

func parseWordsCSV(src io.Reader) ([]*entities.Word, map[string]*entities.Word, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, nil, err
	}

	var words []*entities.Word
	byID := make(map[string]*entities.Word)

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			if len(record) < len(wordColumns) {
				return nil, nil, &ValidationError{Row: row, Column: wordColumns[len(record)], Reason: "is missing"}
			}
			return nil, nil, &ValidationError{Row: row, Column: wordColumns[len(wordColumns)-1], Reason: "has trailing fields after it"}
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read CSV row %d: %w", row, err)
		}

		fields := make([]string, len(record))
		for i, v := range record {
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, nil, &ValidationError{Row: row, Column: wordColumns[i], Reason: "is empty"}
			}
			fields[i] = v
		}

		w := &entities.Word{
			Word:           fields[0],
			Definition:     fields[1],
			PartOfSpeech:   fields[2],
			Example:        fields[3],
			WordInSentence: fields[4],
			BlankedExample: fields[5],
			Form:           fields[6],
		}
		w.ID = entities.WordID(w.Word, w.Form)

		if _, exists := byID[w.ID]; exists {
			return nil, nil, &ValidationError{Row: row, Column: "word", Reason: "duplicates an earlier entry"}
		}

		byID[w.ID] = w
		words = append(words, w)
	}

	return words, byID, nil
}

func validateHeader(header []string) error {
	for i, want := range wordColumns {
		if i >= len(header) {
			return &ValidationError{Column: want, Reason: "is missing"}
		}
		if got := strings.TrimSpace(header[i]); got != want {
			return &ValidationError{Column: want, Reason: fmt.Sprintf("expected, got %q", got)}
		}
	}
	if len(header) > len(wordColumns) {
		return &ValidationError{Column: strings.TrimSpace(header[len(wordColumns)]), Reason: "is not a known column"}
	}
	return nil
}
