package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	FootballAPIKey  string
	FootballAPIBase string
	CompetitionCode string
	DBPath          string
	ServerPort      string
	JWTSecret       string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		FootballAPIKey:  getEnv("FOOTBALL_DATA_API_KEY", ""),
		FootballAPIBase: getEnv("FOOTBALL_DATA_API_URL", "https://api.football-data.org/v4"),
		CompetitionCode: getEnv("COMPETITION_CODE", "PL"),
		DBPath:          getEnv("DB_PATH", "premier.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
	}

	if cfg.FootballAPIKey == "" {
		return nil, fmt.Errorf("FOOTBALL_DATA_API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	logger.Info().
		Str("api_base", cfg.FootballAPIBase).
		Str("competition", cfg.CompetitionCode).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
