package domain

import (
	"time"
)

// Result classifies a match's outcome state.
type Result string

const (
	ResultScheduled Result = "Scheduled"
	ResultLive      Result = "Live"
	ResultHomeWin   Result = "Home Win"
	ResultAwayWin   Result = "Away Win"
	ResultDraw      Result = "Draw"
)

// Decided reports whether the result is terminal. Once a match is
// decided the stored result and goals never regress to Scheduled.
func (r Result) Decided() bool {
	return r == ResultHomeWin || r == ResultAwayWin || r == ResultDraw
}

// PredictableOutcome reports whether the value is acceptable as a user
// prediction. Scheduled and Live are states, not outcomes.
func (r Result) PredictableOutcome() bool {
	return r == ResultHomeWin || r == ResultAwayWin || r == ResultDraw
}

type Team struct {
	ID        int64 // external football-data team id
	Name      string
	ShortName string
	Rank      int // current table position, 0 = unranked
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Match struct {
	ID         int64
	ExternalID int64 // football-data match id, natural key
	Season     string
	HomeTeamID int64
	AwayTeamID int64
	HomeGoals  int
	AwayGoals  int
	Result     Result
	MatchDate  string // calendar date, YYYY-MM-DD
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MatchWithTeams is a match joined with both team rows for rendering.
type MatchWithTeams struct {
	Match
	HomeTeam Team
	AwayTeam Team
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Prediction struct {
	ID          int64
	UserID      int64
	MatchID     int64
	Prediction  Result
	PredictedAt time.Time
}

// Preferences is a user's stored settings, persisted as one JSON
// document per user.
type Preferences struct {
	FavoriteTeamID int64  `json:"favorite_team_id"`
	Timezone       string `json:"timezone"`
	NotifyOnResult bool   `json:"notify_on_result"`
}

// TableRow is one team's line in the computed standings.
type TableRow struct {
	Team         Team
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
}

// IngestionRun records the outcome of one /update ingestion batch.
type IngestionRun struct {
	ID         string // nanoid
	Status     RunStatus
	Fetched    int
	Inserted   int
	Updated    int
	Skipped    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	// RunDegraded means the external API was unreachable and the run
	// persisted nothing; callers keep serving existing data.
	RunDegraded RunStatus = "degraded"
)
