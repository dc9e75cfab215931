package service

import (
	"context"
	"time"

	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// PredictionService serves computed predictions for upcoming fixtures
// and records user picks.
type PredictionService struct {
	matchRepo *repository.MatchRepository
	predRepo  *repository.PredictionRepository
	predictor Predictor
	logger    zerolog.Logger
}

func NewPredictionService(
	matchRepo *repository.MatchRepository,
	predRepo *repository.PredictionRepository,
	predictor Predictor,
	logger zerolog.Logger,
) *PredictionService {
	return &PredictionService{
		matchRepo: matchRepo,
		predRepo:  predRepo,
		predictor: predictor,
		logger:    logger,
	}
}

// MatchPrediction pairs an upcoming fixture with the predictor's call.
type MatchPrediction struct {
	Match     domain.MatchWithTeams
	Predicted Outcome
}

// Upcoming returns predictions for scheduled matches from today on.
func (s *PredictionService) Upcoming(ctx context.Context) ([]MatchPrediction, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	today := time.Now().Format("2006-01-02")
	matches, err := s.matchRepo.ListScheduledFrom(ctx, today)
	if err != nil {
		return nil, err
	}

	predictions := make([]MatchPrediction, 0, len(matches))
	for _, m := range matches {
		predictions = append(predictions, MatchPrediction{
			Match:     m,
			Predicted: s.predictor.Predict(m.HomeTeam, m.AwayTeam),
		})
	}
	return predictions, nil
}

// Submit stores a user's pick. Picks are only valid against matches
// that are still Scheduled; anything already live or decided is
// rejected without touching state.
func (s *PredictionService) Submit(ctx context.Context, userID, matchID int64, outcome domain.Result) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !outcome.PredictableOutcome() {
		return domain.ErrInvalidOutcome
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Result != domain.ResultScheduled {
		return domain.ErrMatchDecided
	}

	if err := s.predRepo.Upsert(ctx, userID, matchID, outcome); err != nil {
		s.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("match_id", matchID).
			Msg("failed to store prediction")
		return err
	}
	return nil
}
