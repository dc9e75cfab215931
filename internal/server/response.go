package server

import (
	"time"

	"premier-tracker/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type teamJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Rank      int    `json:"rank"`
}

type matchJSON struct {
	ID        int64    `json:"id"`
	Season    string   `json:"season"`
	HomeTeam  teamJSON `json:"home_team"`
	AwayTeam  teamJSON `json:"away_team"`
	HomeGoals int      `json:"home_goals"`
	AwayGoals int      `json:"away_goals"`
	Result    string   `json:"result"`
	MatchDate string   `json:"match_date"`
}

type tableRowJSON struct {
	Team         teamJSON `json:"team"`
	Played       int      `json:"played"`
	Won          int      `json:"won"`
	Drawn        int      `json:"drawn"`
	Lost         int      `json:"lost"`
	GoalsFor     int      `json:"goals_for"`
	GoalsAgainst int      `json:"goals_against"`
	GoalDiff     int      `json:"goal_diff"`
	Points       int      `json:"points"`
}

type overviewResponse struct {
	Matches      []matchJSON    `json:"matches"`
	TotalMatches int            `json:"total_matches"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	Standings    []tableRowJSON `json:"standings"`
	Notice       string         `json:"notice,omitempty"`
}

type runResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

type predictionJSON struct {
	Match      matchJSON `json:"match"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
}

type teamPageResponse struct {
	Team     teamJSON      `json:"team"`
	Matches  []matchJSON   `json:"matches"`
	Standing *tableRowJSON `json:"standing,omitempty"`
}

type userJSON struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type userPredictionJSON struct {
	Match       matchJSON `json:"match"`
	Prediction  string    `json:"prediction"`
	PredictedAt time.Time `json:"predicted_at"`
}

type profileResponse struct {
	User        userJSON             `json:"user"`
	Predictions []userPredictionJSON `json:"predictions"`
}

func toTeamJSON(t domain.Team) teamJSON {
	return teamJSON{ID: t.ID, Name: t.Name, ShortName: t.ShortName, Rank: t.Rank}
}

func toMatchJSON(m domain.MatchWithTeams) matchJSON {
	return matchJSON{
		ID:        m.ID,
		Season:    m.Season,
		HomeTeam:  toTeamJSON(m.HomeTeam),
		AwayTeam:  toTeamJSON(m.AwayTeam),
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
		Result:    string(m.Result),
		MatchDate: m.MatchDate,
	}
}

func toMatchJSONs(matches []domain.MatchWithTeams) []matchJSON {
	out := make([]matchJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchJSON(m))
	}
	return out
}

func toTableJSON(row domain.TableRow) tableRowJSON {
	return tableRowJSON{
		Team:         toTeamJSON(row.Team),
		Played:       row.Played,
		Won:          row.Won,
		Drawn:        row.Drawn,
		Lost:         row.Lost,
		GoalsFor:     row.GoalsFor,
		GoalsAgainst: row.GoalsAgainst,
		GoalDiff:     row.GoalDiff,
		Points:       row.Points,
	}
}

func toTableJSONs(rows []domain.TableRow) []tableRowJSON {
	out := make([]tableRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTableJSON(row))
	}
	return out
}
