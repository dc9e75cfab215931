package service

import (
	"context"
	"fmt"
	"time"

	"premier-tracker/internal/api"
	"premier-tracker/internal/config"
	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// IngestService pulls fixtures and the live table from football-data
// and reconciles them against the store. The external API is never a
// hard dependency: when it is unreachable the run is recorded as
// degraded and callers keep serving whatever is already persisted.
type IngestService struct {
	client    *api.FootballDataClient
	cfg       *config.Config
	teamRepo  *repository.TeamRepository
	matchRepo *repository.MatchRepository
	runRepo   *repository.IngestionRunRepository
	logger    zerolog.Logger
}

func NewIngestService(
	client *api.FootballDataClient,
	cfg *config.Config,
	teamRepo *repository.TeamRepository,
	matchRepo *repository.MatchRepository,
	runRepo *repository.IngestionRunRepository,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		client:    client,
		cfg:       cfg,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		runRepo:   runRepo,
		logger:    logger,
	}
}

func (s *IngestService) Run(ctx context.Context) (*domain.IngestionRun, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	run := &domain.IngestionRun{
		ID:        runID,
		Status:    domain.RunCompleted,
		StartedAt: time.Now(),
	}

	matchesResp, ranks := s.fetch(ctx)
	if matchesResp == nil {
		// Stale-data degradation: nothing fetched, nothing lost.
		run.Status = domain.RunDegraded
		run.Error = "fixtures API unreachable"
		s.finish(ctx, run)
		return run, nil
	}
	run.Fetched = len(matchesResp.Matches)

	matches, teams, skippedRecords := s.normalizeBatch(matchesResp.Matches, ranks)
	run.Skipped = skippedRecords

	// Teams go in first so match FK references resolve.
	if err := s.teamRepo.UpsertBatch(ctx, teams); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to upsert teams")
		run.Error = err.Error()
		s.finish(ctx, run)
		return run, fmt.Errorf("failed to upsert teams: %w", err)
	}

	inserted, updated, skippedDB, err := s.matchRepo.UpsertBatch(ctx, matches)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to upsert matches")
		run.Error = err.Error()
		s.finish(ctx, run)
		return run, fmt.Errorf("failed to upsert matches: %w", err)
	}
	run.Inserted = inserted
	run.Updated = updated
	run.Skipped += skippedDB

	s.finish(ctx, run)
	s.logger.Info().
		Str("run_id", run.ID).
		Int("fetched", run.Fetched).
		Int("inserted", run.Inserted).
		Int("updated", run.Updated).
		Int("skipped", run.Skipped).
		Msg("ingestion completed")
	return run, nil
}

// fetch pulls matches and standings in parallel. Matches are required;
// the standings call only enriches team ranks and may fail on its own.
func (s *IngestService) fetch(ctx context.Context) (*api.MatchesResponse, map[int64]int) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(apiCtx)
	var matchesResp *api.MatchesResponse
	ranks := make(map[int64]int)

	g.Go(func() error {
		var err error
		matchesResp, err = s.client.GetMatches(gCtx, s.cfg.CompetitionCode)
		return err
	})

	g.Go(func() error {
		standings, err := s.client.GetStandings(gCtx, s.cfg.CompetitionCode)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to fetch standings, team ranks unchanged")
			return nil
		}
		for _, standing := range standings.Standings {
			if standing.Type != "TOTAL" {
				continue
			}
			for _, row := range standing.Table {
				ranks[row.Team.ID] = row.Position
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to fetch fixtures, continuing with persisted data")
		return nil, nil
	}
	return matchesResp, ranks
}

func (s *IngestService) normalizeBatch(raw []api.RawMatch, ranks map[int64]int) ([]domain.Match, []domain.Team, int) {
	var matches []domain.Match
	teamSet := make(map[int64]domain.Team)
	skipped := 0

	for _, rm := range raw {
		match, ok := normalizeMatch(rm)
		if !ok {
			// Data-quality skip, not an error.
			s.logger.Debug().Int64("external_id", rm.ID).Str("utc_date", rm.UTCDate).
				Msg("dropping malformed match record")
			skipped++
			continue
		}
		matches = append(matches, match)

		for _, rt := range []api.RawTeam{rm.HomeTeam, rm.AwayTeam} {
			teamSet[rt.ID] = domain.Team{
				ID:        rt.ID,
				Name:      rt.Name,
				ShortName: rt.TLA,
				Rank:      ranks[rt.ID],
			}
		}
	}

	teams := make([]domain.Team, 0, len(teamSet))
	for _, t := range teamSet {
		teams = append(teams, t)
	}
	return matches, teams, skipped
}

// normalizeMatch maps one raw API record to the domain shape. Records
// missing a parseable date, an external id, or either team id are
// dropped.
func normalizeMatch(rm api.RawMatch) (domain.Match, bool) {
	if rm.ID == 0 || rm.HomeTeam.ID == 0 || rm.AwayTeam.ID == 0 {
		return domain.Match{}, false
	}
	if len(rm.UTCDate) < 10 {
		return domain.Match{}, false
	}
	matchDate := rm.UTCDate[:10]
	if _, err := time.Parse("2006-01-02", matchDate); err != nil {
		return domain.Match{}, false
	}

	homeGoals, awayGoals := 0, 0
	if rm.Score.FullTime.Home != nil {
		homeGoals = *rm.Score.FullTime.Home
	}
	if rm.Score.FullTime.Away != nil {
		awayGoals = *rm.Score.FullTime.Away
	}

	return domain.Match{
		ExternalID: rm.ID,
		Season:     seasonLabel(rm.Season),
		HomeTeamID: rm.HomeTeam.ID,
		AwayTeamID: rm.AwayTeam.ID,
		HomeGoals:  homeGoals,
		AwayGoals:  awayGoals,
		Result:     classifyResult(rm.Status, homeGoals, awayGoals),
		MatchDate:  matchDate,
	}, true
}

func seasonLabel(season api.RawSeason) string {
	if len(season.StartDate) < 4 || len(season.EndDate) < 4 {
		return "Unknown"
	}
	return season.StartDate[:4] + "/" + season.EndDate[:4]
}

func classifyResult(status string, homeGoals, awayGoals int) domain.Result {
	switch status {
	case "FINISHED":
		switch {
		case homeGoals > awayGoals:
			return domain.ResultHomeWin
		case awayGoals > homeGoals:
			return domain.ResultAwayWin
		default:
			return domain.ResultDraw
		}
	case "IN_PLAY", "PAUSED":
		return domain.ResultLive
	default:
		return domain.ResultScheduled
	}
}

// finish stamps and persists the run record. Failing to write the
// audit row is logged but never fails the ingestion itself.
func (s *IngestService) finish(ctx context.Context, run *domain.IngestionRun) {
	run.FinishedAt = time.Now()

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := s.runRepo.Insert(dbCtx, run); err != nil {
		s.logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record ingestion run")
	}
}
