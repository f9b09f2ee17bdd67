package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// FileProgressRepository persists per-word learning state as a flat JSON map
// keyed by word ID. Records for words absent from the currently loaded
// vocabulary are kept, so progress survives re-uploads.
type FileProgressRepository struct {
	mu      sync.RWMutex
	path    string
	records map[string]*entities.WordProgress
}

// NewFileProgressRepository loads persisted state from path. A missing file
// yields an empty store. An unreadable one yields an empty store together
// with an error wrapping ErrCorruptState, so the caller can warn and carry
// on instead of crashing.
func NewFileProgressRepository(path string) (*FileProgressRepository, error) {
	r := &FileProgressRepository{
		path:    path,
		records: make(map[string]*entities.WordProgress),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var raw map[string]*entities.WordProgress
	if err := json.Unmarshal(data, &raw); err != nil {
		return r, fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}

	for id, p := range raw {
		p.WordID = id
		r.records[id] = p
	}
	return r, nil
}

// Get returns a snapshot of the record for wordID, or ErrProgressNotFound.
func (r *FileProgressRepository) Get(_ context.Context, wordID string) (*entities.WordProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records[wordID]
	if !ok {
		return nil, ErrProgressNotFound
	}
	cp := *p
	return &cp, nil
}

// GetAll returns snapshots of every record, in no particular order.
func (r *FileProgressRepository) GetAll(_ context.Context) ([]*entities.WordProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.WordProgress, 0, len(r.records))
	for _, p := range r.records {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// Upsert stores a record in memory. Call Save to make it durable.
func (r *FileProgressRepository) Upsert(_ context.Context, p *entities.WordProgress) error {
	if p.WordID == "" {
		return errors.New("progress record without word ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	r.records[p.WordID] = &cp
	return nil
}

// DueWords returns the IDs of words with due_at <= now.
func (r *FileProgressRepository) DueWords(_ context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for id, p := range r.records {
		if p.IsDue(now) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// DifficultWords returns the IDs of words with difficulty_score >= threshold,
// ordered by score descending, ties by miss rate descending then by ID.
func (r *FileProgressRepository) DifficultWords(_ context.Context, threshold float64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hard []*entities.WordProgress
	for _, p := range r.records {
		if p.DifficultyScore >= threshold {
			hard = append(hard, p)
		}
	}

	sort.Slice(hard, func(i, j int) bool {
		if hard[i].DifficultyScore != hard[j].DifficultyScore {
			return hard[i].DifficultyScore > hard[j].DifficultyScore
		}
		ri, rj := missRate(hard[i]), missRate(hard[j])
		if ri != rj {
			return ri > rj
		}
		return hard[i].WordID < hard[j].WordID
	})

	out := make([]string, len(hard))
	for i, p := range hard {
		out[i] = p.WordID
	}
	return out, nil
}

// Save writes the whole store to disk. The file is written to a temp file in
// the same directory and renamed into place, so a crash never leaves a
// half-written progress file behind.
func (r *FileProgressRepository) Save(_ context.Context) error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.records, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	return writeFileAtomic(r.path, data)
}

func missRate(p *entities.WordProgress) float64 {
	attempts := p.Attempts()
	if attempts == 0 {
		return 0
	}
	return float64(p.IncorrectCount) / float64(attempts)
}

// writeFileAtomic writes data to path via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		if werr != nil {
			return fmt.Errorf("write temp file: %w", werr)
		}
		return fmt.Errorf("close temp file: %w", cerr)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
