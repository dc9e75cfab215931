package service

import (
	"context"
	"sort"

	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// StandingsService derives the league table from persisted matches on
// every read. There are no stored running totals, so the table is
// always consistent with the match set at the instant it is computed.
type StandingsService struct {
	matchRepo *repository.MatchRepository
	teamRepo  *repository.TeamRepository
	logger    zerolog.Logger
}

func NewStandingsService(matchRepo *repository.MatchRepository, teamRepo *repository.TeamRepository, logger zerolog.Logger) *StandingsService {
	return &StandingsService{matchRepo: matchRepo, teamRepo: teamRepo, logger: logger}
}

// Table computes one row per known team from decided matches only.
// An empty season covers all seasons.
func (s *StandingsService) Table(ctx context.Context, season string) ([]domain.TableRow, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListDecided(ctx, season)
	if err != nil {
		return nil, err
	}

	rows := ComputeTable(teams, matches)
	return rows, nil
}

// ComputeTable is the pure aggregation. Only decided matches count;
// wins are worth 3 points and draws 1. Ties are broken by points, goal
// difference, goals scored, then team name, so the ordering is fully
// deterministic.
func ComputeTable(teams []domain.Team, matches []domain.Match) []domain.TableRow {
	byTeam := make(map[int64]*domain.TableRow, len(teams))
	for _, t := range teams {
		byTeam[t.ID] = &domain.TableRow{Team: t}
	}

	for _, m := range matches {
		if !m.Result.Decided() {
			continue
		}
		home, haveHome := byTeam[m.HomeTeamID]
		away, haveAway := byTeam[m.AwayTeamID]
		if !haveHome || !haveAway {
			continue
		}

		home.Played++
		away.Played++
		home.GoalsFor += m.HomeGoals
		home.GoalsAgainst += m.AwayGoals
		away.GoalsFor += m.AwayGoals
		away.GoalsAgainst += m.HomeGoals

		switch m.Result {
		case domain.ResultHomeWin:
			home.Won++
			home.Points += constants.PointsWin
			away.Lost++
		case domain.ResultAwayWin:
			away.Won++
			away.Points += constants.PointsWin
			home.Lost++
		case domain.ResultDraw:
			home.Drawn++
			away.Drawn++
			home.Points += constants.PointsDraw
			away.Points += constants.PointsDraw
		}
	}

	rows := make([]domain.TableRow, 0, len(byTeam))
	for _, row := range byTeam {
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team.Name < b.Team.Name
	})

	return rows
}
