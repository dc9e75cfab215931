package repository

import (
	"context"
	"database/sql"
	"errors"

	"premier-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type IngestionRunRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewIngestionRunRepository(db *sql.DB, logger zerolog.Logger) *IngestionRunRepository {
	return &IngestionRunRepository{db: db, logger: logger}
}

func (r *IngestionRunRepository) Insert(ctx context.Context, run *domain.IngestionRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingestion_runs (id, status, fetched, inserted, updated, skipped, error, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.Fetched, run.Inserted, run.Updated, run.Skipped,
		run.Error, run.StartedAt, run.FinishedAt)
	return err
}

// Latest returns the most recent run, or nil when no ingestion has
// happened yet.
func (r *IngestionRunRepository) Latest(ctx context.Context) (*domain.IngestionRun, error) {
	var run domain.IngestionRun
	var status string
	err := r.db.QueryRowContext(ctx, `
SELECT id, status, fetched, inserted, updated, skipped, error, started_at, finished_at
FROM ingestion_runs
ORDER BY started_at DESC
LIMIT 1`).Scan(&run.ID, &status, &run.Fetched, &run.Inserted, &run.Updated,
		&run.Skipped, &run.Error, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	return &run, nil
}
