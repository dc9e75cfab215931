package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type TeamRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTeamRepository(db *sql.DB, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{db: db, logger: logger}
}

const upsertTeamQuery = `
INSERT INTO teams (id, name, short_name, rank, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name       = excluded.name,
    short_name = excluded.short_name,
    rank       = CASE WHEN excluded.rank > 0 THEN excluded.rank ELSE teams.rank END,
    updated_at = excluded.updated_at`

func (r *TeamRepository) Upsert(ctx context.Context, team *domain.Team) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, upsertTeamQuery,
		team.ID, team.Name, team.ShortName, team.Rank, now, now)
	return err
}

// UpsertBatch writes teams in one transaction. Rank 0 never overwrites
// a known rank, so team rows built from match records cannot clobber
// positions ingested from the standings table.
func (r *TeamRepository) UpsertBatch(ctx context.Context, teams []domain.Team) error {
	if len(teams) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(teams); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(teams))
		for _, team := range teams[i:end] {
			now := time.Now()
			if _, err := tx.ExecContext(ctx, upsertTeamQuery,
				team.ID, team.Name, team.ShortName, team.Rank, now, now); err != nil {
				return fmt.Errorf("failed to upsert team %d: %w", team.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (r *TeamRepository) Get(ctx context.Context, id int64) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, short_name, rank, created_at, updated_at FROM teams WHERE id = ?`, id)

	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.ShortName, &t.Rank, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, short_name, rank, created_at, updated_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.Rank, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
