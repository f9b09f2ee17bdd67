package service

import (
	"context"
	"io"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// WordRepository provides read access to the loaded vocabulary set.
type WordRepository interface {
	Get(id string) (*entities.Word, error)
	All() []*entities.Word
	Search(query string) []*entities.Word
	Count() int
	Load(src io.Reader) error
}

// ProgressRepository manages per-word learning state. File and Postgres
// backends both satisfy it; Save is a no-op for backends that persist on
// Upsert.
type ProgressRepository interface {
	Get(ctx context.Context, wordID string) (*entities.WordProgress, error)
	GetAll(ctx context.Context) ([]*entities.WordProgress, error)
	Upsert(ctx context.Context, p *entities.WordProgress) error
	DueWords(ctx context.Context, now time.Time) ([]string, error)
	DifficultWords(ctx context.Context, threshold float64) ([]string, error)
	Save(ctx context.Context) error
}

// HistoryRepository archives completed session summaries.
type HistoryRepository interface {
	Append(ctx context.Context, sum entities.SessionSummary) error
	All(ctx context.Context) ([]entities.SessionSummary, error)
}
