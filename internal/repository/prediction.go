package repository

import (
	"context"
	"database/sql"
	"time"

	"premier-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type PredictionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPredictionRepository(db *sql.DB, logger zerolog.Logger) *PredictionRepository {
	return &PredictionRepository{db: db, logger: logger}
}

// Upsert records a user's pick for a match. Resubmission replaces the
// stored outcome in place; UNIQUE(user_id, match_id) keeps the row
// count at one even under concurrent submissions.
func (r *PredictionRepository) Upsert(ctx context.Context, userID, matchID int64, outcome domain.Result) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO predictions (user_id, match_id, prediction, predicted_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, match_id) DO UPDATE SET
    prediction   = excluded.prediction,
    predicted_at = excluded.predicted_at`,
		userID, matchID, string(outcome), time.Now())
	return err
}

// PredictionWithMatch is a stored pick joined with its match and teams.
type PredictionWithMatch struct {
	Prediction domain.Prediction
	Match      domain.MatchWithTeams
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID int64) ([]PredictionWithMatch, error) {
	query := `SELECT p.id, p.user_id, p.match_id, p.prediction, p.predicted_at,` +
		matchWithTeamsColumns + `
FROM predictions p
JOIN matches m ON m.id = p.match_id
JOIN teams h ON h.id = m.home_team_id
JOIN teams a ON a.id = m.away_team_id
WHERE p.user_id = ?
ORDER BY p.predicted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PredictionWithMatch
	for rows.Next() {
		var pw PredictionWithMatch
		m := &pw.Match
		if err := rows.Scan(
			&pw.Prediction.ID, &pw.Prediction.UserID, &pw.Prediction.MatchID,
			&pw.Prediction.Prediction, &pw.Prediction.PredictedAt,
			&m.ID, &m.ExternalID, &m.Season, &m.HomeTeamID, &m.AwayTeamID,
			&m.HomeGoals, &m.AwayGoals, &m.Result, &m.MatchDate, &m.CreatedAt, &m.UpdatedAt,
			&m.HomeTeam.ID, &m.HomeTeam.Name, &m.HomeTeam.ShortName, &m.HomeTeam.Rank,
			&m.HomeTeam.CreatedAt, &m.HomeTeam.UpdatedAt,
			&m.AwayTeam.ID, &m.AwayTeam.Name, &m.AwayTeam.ShortName, &m.AwayTeam.Rank,
			&m.AwayTeam.CreatedAt, &m.AwayTeam.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, pw)
	}
	return results, rows.Err()
}

func (r *PredictionRepository) CountForMatch(ctx context.Context, matchID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM predictions WHERE match_id = ?`, matchID).Scan(&count)
	return count, err
}
