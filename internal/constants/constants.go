package constants

import "time"

const (
	ExternalAPITimeout = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	APIMaxRetries      = 2
	APIRetryBackoff    = 500 * time.Millisecond
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	PointsWin  = 3
	PointsDraw = 1

	// DrawConfidence is the fixed confidence reported for predicted
	// draws; the rank gap carries no signal when ranks are equal.
	DrawConfidence = 0.25

	LeagueSize = 20
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	TokenTTL = 72 * time.Hour

	// Token-bucket limits, refilled over the window.
	GeneralRateLimit  = 100
	GeneralRateWindow = 15 * time.Minute
	AuthRateLimit     = 5
	AuthRateWindow    = 5 * time.Minute
)
