package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"premier-tracker/internal/config"
	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, and the logged-in user's
// profile and preferences. Sessions are stateless HS256 tokens.
type AuthService struct {
	userRepo *repository.UserRepository
	predRepo *repository.PredictionRepository
	teamRepo *repository.TeamRepository
	secret   []byte
	logger   zerolog.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	predRepo *repository.PredictionRepository,
	teamRepo *repository.TeamRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		predRepo: predRepo,
		teamRepo: teamRepo,
		secret:   []byte(cfg.JWTSecret),
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || len(password) < 8 {
		return nil, "", fmt.Errorf("%w: username, email, and a password of at least 8 characters are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Uniform error so login probes cannot enumerate usernames.
		return nil, "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return user, token, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(constants.TokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Profile is the logged-in user with their stored picks.
type Profile struct {
	User        domain.User
	Predictions []repository.PredictionWithMatch
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	predictions, err := s.predRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &Profile{User: *user, Predictions: predictions}, nil
}

func (s *AuthService) GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.userRepo.GetPreferences(ctx, userID)
}

func (s *AuthService) SavePreferences(ctx context.Context, userID int64, prefs *domain.Preferences) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if prefs.Timezone != "" {
		if _, err := time.LoadLocation(prefs.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, prefs.Timezone)
		}
	}
	if prefs.FavoriteTeamID != 0 {
		if _, err := s.teamRepo.Get(ctx, prefs.FavoriteTeamID); err != nil {
			return fmt.Errorf("%w: unknown team %d", domain.ErrValidation, prefs.FavoriteTeamID)
		}
	}

	return s.userRepo.SavePreferences(ctx, userID, prefs)
}
