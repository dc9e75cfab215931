package service

import (
	"context"
	"strconv"

	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// LeagueService backs the read-only pages: the match list with the
// current table, and the per-team view.
type LeagueService struct {
	matchRepo *repository.MatchRepository
	teamRepo  *repository.TeamRepository
	runRepo   *repository.IngestionRunRepository
	standings *StandingsService
	logger    zerolog.Logger
}

func NewLeagueService(
	matchRepo *repository.MatchRepository,
	teamRepo *repository.TeamRepository,
	runRepo *repository.IngestionRunRepository,
	standings *StandingsService,
	logger zerolog.Logger,
) *LeagueService {
	return &LeagueService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		runRepo:   runRepo,
		standings: standings,
		logger:    logger,
	}
}

// Overview is the home page payload: one page of matches plus the
// standings computed from the full decided-match set.
type Overview struct {
	Matches      []domain.MatchWithTeams
	TotalMatches int
	Page         int
	PageSize     int
	Standings    []domain.TableRow
	LastRun      *domain.IngestionRun
}

func (s *LeagueService) Overview(ctx context.Context, page, pageSize, season string) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, size := parsePage(page, pageSize)

	matches, err := s.matchRepo.List(ctx, size, (p-1)*size)
	if err != nil {
		return nil, err
	}
	total, err := s.matchRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.standings.Table(ctx, season)
	if err != nil {
		return nil, err
	}

	// The latest run is advisory only: a degraded run means the page
	// is serving stale data and says so.
	lastRun, err := s.runRepo.Latest(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load latest ingestion run")
		lastRun = nil
	}

	return &Overview{
		Matches:      matches,
		TotalMatches: total,
		Page:         p,
		PageSize:     size,
		Standings:    table,
		LastRun:      lastRun,
	}, nil
}

func parsePage(page, size string) (int, int) {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}
	s, err := strconv.Atoi(size)
	if err != nil || s < 1 {
		s = constants.DefaultPageSize
	}
	if s > constants.MaxPageSize {
		s = constants.MaxPageSize
	}
	return p, s
}

// TeamPage is one club with its full fixture list and table line.
type TeamPage struct {
	Team     domain.Team
	Matches  []domain.MatchWithTeams
	Standing *domain.TableRow
}

func (s *LeagueService) TeamPage(ctx context.Context, teamID int64) (*TeamPage, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	team, err := s.teamRepo.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	table, err := s.standings.Table(ctx, "")
	if err != nil {
		return nil, err
	}

	page := &TeamPage{Team: *team, Matches: matches}
	for i := range table {
		if table[i].Team.ID == teamID {
			page.Standing = &table[i]
			break
		}
	}
	return page, nil
}
