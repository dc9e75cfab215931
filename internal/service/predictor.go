package service

import (
	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
)

// Outcome is a predicted result with a confidence in [0, 1].
type Outcome struct {
	Result     domain.Result
	Confidence float64
}

// Predictor predicts the outcome of a fixture from the two team rows.
// Implementations must be deterministic for the same inputs; any
// alternate strategy slots in behind this interface.
type Predictor interface {
	Predict(home, away domain.Team) Outcome
}

// RankPredictor predicts from league positions alone: the better
// placed side wins, equal ranks draw. Confidence scales linearly with
// the rank gap against the widest possible gap; draws carry a fixed
// confidence since an empty gap has no signal to scale.
type RankPredictor struct {
	leagueSize int
}

func NewRankPredictor() *RankPredictor {
	return &RankPredictor{leagueSize: constants.LeagueSize}
}

func (p *RankPredictor) Predict(home, away domain.Team) Outcome {
	// Rank 0 means unranked. Without positions for both sides the gap
	// says nothing, so fall back to the draw prediction.
	if home.Rank == away.Rank || home.Rank == 0 || away.Rank == 0 {
		return Outcome{Result: domain.ResultDraw, Confidence: constants.DrawConfidence}
	}

	gap := home.Rank - away.Rank
	if gap < 0 {
		gap = -gap
	}
	confidence := float64(gap) / float64(p.leagueSize-1)
	if confidence > 1 {
		confidence = 1
	}

	if home.Rank < away.Rank {
		return Outcome{Result: domain.ResultHomeWin, Confidence: confidence}
	}
	return Outcome{Result: domain.ResultAwayWin, Confidence: confidence}
}
