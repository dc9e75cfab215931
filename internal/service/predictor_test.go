package service

import (
	"testing"

	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team(rank int) domain.Team {
	return domain.Team{ID: int64(rank + 100), Name: "Team", Rank: rank}
}

func TestRankPredictorBetterRankWins(t *testing.T) {
	p := NewRankPredictor()

	home := p.Predict(team(3), team(10))
	assert.Equal(t, domain.ResultHomeWin, home.Result)

	away := p.Predict(team(10), team(3))
	assert.Equal(t, domain.ResultAwayWin, away.Result)
}

func TestRankPredictorConfidenceScalesWithGap(t *testing.T) {
	p := NewRankPredictor()

	wide := p.Predict(team(3), team(10))
	narrow := p.Predict(team(9), team(10))

	require.Equal(t, domain.ResultHomeWin, wide.Result)
	require.Equal(t, domain.ResultHomeWin, narrow.Result)
	assert.Greater(t, wide.Confidence, narrow.Confidence)

	// Widest possible gap saturates at full confidence.
	max := p.Predict(team(1), team(constants.LeagueSize))
	assert.InDelta(t, 1.0, max.Confidence, 1e-9)
}

func TestRankPredictorEqualRanksDraw(t *testing.T) {
	p := NewRankPredictor()

	out := p.Predict(team(5), team(5))
	assert.Equal(t, domain.ResultDraw, out.Result)
	assert.Equal(t, constants.DrawConfidence, out.Confidence)
}

func TestRankPredictorUnrankedFallsBackToDraw(t *testing.T) {
	p := NewRankPredictor()

	out := p.Predict(team(0), team(7))
	assert.Equal(t, domain.ResultDraw, out.Result)
	assert.Equal(t, constants.DrawConfidence, out.Confidence)
}

func TestRankPredictorDeterminism(t *testing.T) {
	p := NewRankPredictor()

	first := p.Predict(team(2), team(14))
	for range 10 {
		assert.Equal(t, first, p.Predict(team(2), team(14)))
	}
}
