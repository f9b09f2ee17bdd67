package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// FileHistoryRepository archives completed session summaries as a JSON array.
// The archive backs the day-streak and review totals shown in /progress.
type FileHistoryRepository struct {
	mu       sync.RWMutex
	path     string
	sessions []entities.SessionSummary
}

// NewFileHistoryRepository loads the archive from path; a missing file yields
// an empty archive. A malformed archive is not fatal study data, so it is
// discarded with an error the caller may log.
func NewFileHistoryRepository(path string) (*FileHistoryRepository, error) {
	r := &FileHistoryRepository{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	if err := json.Unmarshal(data, &r.sessions); err != nil {
		return r, fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}
	return r, nil
}

// Append archives one finished session and persists the archive.
func (r *FileHistoryRepository) Append(_ context.Context, sum entities.SessionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, sum)

	data, err := json.MarshalIndent(r.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return writeFileAtomic(r.path, data)
}

// All returns every archived summary in append order.
func (r *FileHistoryRepository) All(_ context.Context) ([]entities.SessionSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.SessionSummary, len(r.sessions))
	copy(out, r.sessions)
	return out, nil
}
