package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// HistoryRepository archives completed session summaries in Postgres.
type HistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the sessions table if it does not exist yet.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS study_sessions (
			id              BIGSERIAL PRIMARY KEY,
			mode            TEXT NOT NULL,
			total_words     INTEGER NOT NULL,
			correct         INTEGER NOT NULL,
			incorrect       INTEGER NOT NULL,
			accuracy        DOUBLE PRECISION NOT NULL,
			total_time_ms   BIGINT NOT NULL,
			average_time_ms BIGINT NOT NULL,
			fastest_word_id TEXT,
			slowest_word_id TEXT,
			started_at      TIMESTAMPTZ NOT NULL,
			completed_at    TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create study_sessions: %w", err)
	}
	return nil
}

// Append archives one finished session.
func (r *HistoryRepository) Append(ctx context.Context, sum entities.SessionSummary) error {
	query := `
		INSERT INTO study_sessions (
			mode, total_words, correct, incorrect, accuracy,
			total_time_ms, average_time_ms, fastest_word_id, slowest_word_id,
			started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		ctx, query,
		string(sum.Mode),
		sum.TotalWords,
		sum.Correct,
		sum.Incorrect,
		sum.Accuracy,
		sum.TotalTimeMs,
		sum.AverageTimeMs,
		nullIfEmpty(sum.FastestWordID),
		nullIfEmpty(sum.SlowestWordID),
		sum.StartedAt,
		sum.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

// All returns every archived summary in append order.
func (r *HistoryRepository) All(ctx context.Context) ([]entities.SessionSummary, error) {
	query := `
		SELECT mode, total_words, correct, incorrect, accuracy,
		       total_time_ms, average_time_ms,
		       COALESCE(fastest_word_id, ''), COALESCE(slowest_word_id, ''),
		       started_at, completed_at
		FROM study_sessions
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []entities.SessionSummary
	for rows.Next() {
		var sum entities.SessionSummary
		var mode string
		if err := rows.Scan(
			&mode,
			&sum.TotalWords,
			&sum.Correct,
			&sum.Incorrect,
			&sum.Accuracy,
			&sum.TotalTimeMs,
			&sum.AverageTimeMs,
			&sum.FastestWordID,
			&sum.SlowestWordID,
			&sum.StartedAt,
			&sum.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.Mode = entities.StudyMode(mode)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
