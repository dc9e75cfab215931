package fx

import (
	"premier-tracker/internal/api"
	"premier-tracker/internal/config"
	"premier-tracker/internal/database"
	"premier-tracker/internal/logger"
	"premier-tracker/internal/repository"
	"premier-tracker/internal/server"
	"premier-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvidePredictor() service.Predictor {
	return service.NewRankPredictor()
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewTeamRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewPredictionRepository),
	fx.Provide(repository.NewIngestionRunRepository),
	// api client
	fx.Provide(api.NewFootballDataClient),
	// svc
	fx.Provide(ProvidePredictor),
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewStandingsService),
	fx.Provide(service.NewPredictionService),
	fx.Provide(service.NewLeagueService),
	fx.Provide(service.NewAuthService),
	// server
	fx.Provide(server.NewServer),
)
