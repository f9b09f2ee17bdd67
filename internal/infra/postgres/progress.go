package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
	"github.com/adilbekov/gre-vocab-bot/internal/repository"
)

// ProgressRepository is the Postgres twin of the JSON-file progress store. It
// satisfies the same interface; every upsert is durable on its own, so Save is
// a no-op.
type ProgressRepository struct {
	db *pgxpool.Pool
}

func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Migrate creates the progress table if it does not exist yet.
func (r *ProgressRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS word_progress (
			word_id          TEXT PRIMARY KEY,
			correct_count    INTEGER NOT NULL DEFAULT 0,
			incorrect_count  INTEGER NOT NULL DEFAULT 0,
			streak           INTEGER NOT NULL DEFAULT 0,
			due_at           TIMESTAMPTZ NOT NULL,
			last_seen_at     TIMESTAMPTZ,
			difficulty_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_time_ms    BIGINT NOT NULL DEFAULT 0,
			review_count     INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("create word_progress: %w", err)
	}
	return nil
}

// Upsert creates or updates a progress record.
func (r *ProgressRepository) Upsert(ctx context.Context, p *entities.WordProgress) error {
	query := `
		INSERT INTO word_progress (
			word_id, correct_count, incorrect_count, streak,
			due_at, last_seen_at, difficulty_score, total_time_ms, review_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (word_id)
		DO UPDATE SET
			correct_count    = excluded.correct_count,
			incorrect_count  = excluded.incorrect_count,
			streak           = excluded.streak,
			due_at           = excluded.due_at,
			last_seen_at     = excluded.last_seen_at,
			difficulty_score = excluded.difficulty_score,
			total_time_ms    = excluded.total_time_ms,
			review_count     = excluded.review_count
	`

	_, err := r.db.Exec(
		ctx, query,
		p.WordID,
		p.CorrectCount,
		p.IncorrectCount,
		p.Streak,
		p.DueAt,
		p.LastSeenAt,
		p.DifficultyScore,
		p.TotalTimeMs,
		p.ReviewCount,
	)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	return nil
}

// Get retrieves a single progress record by word ID.
// Returns repository.ErrProgressNotFound if the record doesn't exist.
func (r *ProgressRepository) Get(ctx context.Context, wordID string) (*entities.WordProgress, error) {
	query := `
		SELECT word_id, correct_count, incorrect_count, streak,
		       due_at, last_seen_at, difficulty_score, total_time_ms, review_count
		FROM word_progress
		WHERE word_id = $1
	`

	var p entities.WordProgress
	err := r.db.QueryRow(ctx, query, wordID).Scan(
		&p.WordID,
		&p.CorrectCount,
		&p.IncorrectCount,
		&p.Streak,
		&p.DueAt,
		&p.LastSeenAt,
		&p.DifficultyScore,
		&p.TotalTimeMs,
		&p.ReviewCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}

	return &p, nil
}

// GetAll retrieves every progress record.
func (r *ProgressRepository) GetAll(ctx context.Context) ([]*entities.WordProgress, error) {
	query := `
		SELECT word_id, correct_count, incorrect_count, streak,
		       due_at, last_seen_at, difficulty_score, total_time_ms, review_count
		FROM word_progress
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	defer rows.Close()

	var out []*entities.WordProgress
	for rows.Next() {
		var p entities.WordProgress
		if err := rows.Scan(
			&p.WordID,
			&p.CorrectCount,
			&p.IncorrectCount,
			&p.Streak,
			&p.DueAt,
			&p.LastSeenAt,
			&p.DifficultyScore,
			&p.TotalTimeMs,
			&p.ReviewCount,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DueWords returns IDs of words due for review at the given time.
func (r *ProgressRepository) DueWords(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT word_id FROM word_progress
		WHERE due_at <= $1
		ORDER BY word_id
	`
	return r.queryIDs(ctx, query, now)
}

// DifficultWords returns IDs with difficulty_score >= threshold, hardest first.
func (r *ProgressRepository) DifficultWords(ctx context.Context, threshold float64) ([]string, error) {
	query := `
		SELECT word_id FROM word_progress
		WHERE difficulty_score >= $1
		ORDER BY difficulty_score DESC,
		         incorrect_count::float / GREATEST(correct_count + incorrect_count, 1) DESC,
		         word_id
	`
	return r.queryIDs(ctx, query, threshold)
}

// Save is a no-op: rows are durable as soon as they are upserted.
func (r *ProgressRepository) Save(context.Context) error {
	return nil
}

func (r *ProgressRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
