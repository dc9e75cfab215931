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

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

// upsertMatchQuery is keyed on the external match id. The CASE guards
// keep a decided result and its goals immutable when a stale re-fetch
// reports the fixture as Scheduled again.
const upsertMatchQuery = `
INSERT INTO matches (external_id, season, home_team_id, away_team_id,
                     home_goals, away_goals, result, match_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (external_id) DO UPDATE SET
    season     = excluded.season,
    match_date = excluded.match_date,
    home_goals = CASE WHEN excluded.result = 'Scheduled'
                       AND matches.result IN ('Home Win', 'Away Win', 'Draw')
                      THEN matches.home_goals ELSE excluded.home_goals END,
    away_goals = CASE WHEN excluded.result = 'Scheduled'
                       AND matches.result IN ('Home Win', 'Away Win', 'Draw')
                      THEN matches.away_goals ELSE excluded.away_goals END,
    result     = CASE WHEN excluded.result = 'Scheduled'
                       AND matches.result IN ('Home Win', 'Away Win', 'Draw')
                      THEN matches.result ELSE excluded.result END,
    updated_at = excluded.updated_at`

// UpsertBatch reconciles a fetched batch against stored state. A
// failing record is logged and skipped; one bad record never aborts
// the rest of the batch.
func (r *MatchRepository) UpsertBatch(ctx context.Context, matches []domain.Match) (inserted, updated, skipped int, err error) {
	if len(matches) == 0 {
		return 0, 0, 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(matches); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(matches))
		for _, match := range matches[i:end] {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM matches WHERE external_id = ?)`,
				match.ExternalID).Scan(&exists); err != nil {
				return 0, 0, 0, fmt.Errorf("failed to check match %d: %w", match.ExternalID, err)
			}

			now := time.Now()
			if _, err := tx.ExecContext(ctx, upsertMatchQuery,
				match.ExternalID, match.Season, match.HomeTeamID, match.AwayTeamID,
				match.HomeGoals, match.AwayGoals, string(match.Result), match.MatchDate,
				now, now); err != nil {
				r.logger.Warn().Err(err).
					Int64("external_id", match.ExternalID).
					Msg("failed to upsert match, skipping record")
				skipped++
				continue
			}

			if exists {
				updated++
			} else {
				inserted++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to commit match batch: %w", err)
	}
	return inserted, updated, skipped, nil
}

const matchWithTeamsColumns = `
    m.id, m.external_id, m.season, m.home_team_id, m.away_team_id,
    m.home_goals, m.away_goals, m.result, m.match_date, m.created_at, m.updated_at,
    h.id, h.name, h.short_name, h.rank, h.created_at, h.updated_at,
    a.id, a.name, a.short_name, a.rank, a.created_at, a.updated_at`

const matchWithTeamsFrom = `
FROM matches m
JOIN teams h ON h.id = m.home_team_id
JOIN teams a ON a.id = m.away_team_id`

func scanMatchWithTeams(rows interface{ Scan(...any) error }) (domain.MatchWithTeams, error) {
	var m domain.MatchWithTeams
	err := rows.Scan(
		&m.ID, &m.ExternalID, &m.Season, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomeGoals, &m.AwayGoals, &m.Result, &m.MatchDate, &m.CreatedAt, &m.UpdatedAt,
		&m.HomeTeam.ID, &m.HomeTeam.Name, &m.HomeTeam.ShortName, &m.HomeTeam.Rank,
		&m.HomeTeam.CreatedAt, &m.HomeTeam.UpdatedAt,
		&m.AwayTeam.ID, &m.AwayTeam.Name, &m.AwayTeam.ShortName, &m.AwayTeam.Rank,
		&m.AwayTeam.CreatedAt, &m.AwayTeam.UpdatedAt,
	)
	return m, err
}

func (r *MatchRepository) List(ctx context.Context, limit, offset int) ([]domain.MatchWithTeams, error) {
	query := `SELECT` + matchWithTeamsColumns + matchWithTeamsFrom + `
ORDER BY m.match_date DESC, m.id DESC
LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	return count, err
}

// ListScheduledFrom returns scheduled matches on or after the given
// date, soonest first. Used by the predictor routes.
func (r *MatchRepository) ListScheduledFrom(ctx context.Context, date string) ([]domain.MatchWithTeams, error) {
	query := `SELECT` + matchWithTeamsColumns + matchWithTeamsFrom + `
WHERE m.match_date >= ? AND m.result = 'Scheduled'
ORDER BY m.match_date ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

// ListDecided returns every match with a terminal result, the input
// for the standings computation. An empty season means all seasons.
func (r *MatchRepository) ListDecided(ctx context.Context, season string) ([]domain.Match, error) {
	query := `SELECT id, external_id, season, home_team_id, away_team_id,
       home_goals, away_goals, result, match_date, created_at, updated_at
FROM matches
WHERE result IN ('Home Win', 'Away Win', 'Draw')`
	args := []any{}
	if season != "" {
		query += ` AND season = ?`
		args = append(args, season)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.ExternalID, &m.Season, &m.HomeTeamID, &m.AwayTeamID,
			&m.HomeGoals, &m.AwayGoals, &m.Result, &m.MatchDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*domain.MatchWithTeams, error) {
	query := `SELECT` + matchWithTeamsColumns + matchWithTeamsFrom + ` WHERE m.id = ?`

	m, err := scanMatchWithTeams(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamID int64) ([]domain.MatchWithTeams, error) {
	query := `SELECT` + matchWithTeamsColumns + matchWithTeamsFrom + `
WHERE m.home_team_id = ? OR m.away_team_id = ?
ORDER BY m.match_date DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func collectMatches(rows *sql.Rows) ([]domain.MatchWithTeams, error) {
	var matches []domain.MatchWithTeams
	for rows.Next() {
		m, err := scanMatchWithTeams(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
