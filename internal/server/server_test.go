package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"premier-tracker/internal/api"
	"premier-tracker/internal/config"
	"premier-tracker/internal/database"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/repository"
	"premier-tracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	server  *Server
	mux     *http.ServeMux
	teams   *repository.TeamRepository
	matches *repository.MatchRepository
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	log := zerolog.Nop()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		FootballAPIKey:  "test-key",
		FootballAPIBase: "http://127.0.0.1:0",
		CompetitionCode: "PL",
		JWTSecret:       "test-secret",
	}

	teamRepo := repository.NewTeamRepository(db, log)
	matchRepo := repository.NewMatchRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	predRepo := repository.NewPredictionRepository(db, log)
	runRepo := repository.NewIngestionRunRepository(db, log)

	standings := service.NewStandingsService(matchRepo, teamRepo, log)
	league := service.NewLeagueService(matchRepo, teamRepo, runRepo, standings, log)
	predictions := service.NewPredictionService(matchRepo, predRepo, service.NewRankPredictor(), log)
	auth := service.NewAuthService(userRepo, predRepo, teamRepo, cfg, log)
	ingest := service.NewIngestService(api.NewFootballDataClient(cfg), cfg, teamRepo, matchRepo, runRepo, log)

	srv := NewServer(league, ingest, predictions, auth, cfg, log)
	t.Cleanup(srv.Close)
	return &serverFixture{server: srv, mux: srv.Routes(), teams: teamRepo, matches: matchRepo}
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) seedScheduledMatch(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.teams.Upsert(ctx, &domain.Team{ID: 57, Name: "Arsenal", ShortName: "ARS", Rank: 1}))
	require.NoError(t, f.teams.Upsert(ctx, &domain.Team{ID: 61, Name: "Chelsea", ShortName: "CHE", Rank: 8}))

	_, _, _, err := f.matches.UpsertBatch(ctx, []domain.Match{{
		ExternalID: 9001,
		Season:     "2025/2026",
		HomeTeamID: 57,
		AwayTeamID: 61,
		Result:     domain.ResultScheduled,
		MatchDate:  "2099-01-01",
	}})
	require.NoError(t, err)

	stored, err := f.matches.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	return stored[0].ID
}

func TestHealth(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexEmptyDatabase(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches      []json.RawMessage `json:"matches"`
		TotalMatches int               `json:"total_matches"`
		Page         int               `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalMatches)
	assert.Equal(t, 1, resp.Page)
	assert.Empty(t, resp.Matches)
}

func TestRegisterLoginMakePredictionFlow(t *testing.T) {
	f := newServerFixture(t)
	matchID := f.seedScheduledMatch(t)

	rec := f.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "alice",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.Username)

	url := "/make_prediction/" + itoa(matchID)
	rec = f.do(t, http.MethodPost, url, login.Token, map[string]string{"prediction": "Home Win"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Resubmission replaces the pick rather than erroring.
	rec = f.do(t, http.MethodPost, url, login.Token, map[string]string{"prediction": "Draw"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		Predictions []struct {
			Prediction string `json:"prediction"`
		} `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Len(t, profile.Predictions, 1)
	assert.Equal(t, "Draw", profile.Predictions[0].Prediction)
}

func TestMakePredictionRejectsBadInput(t *testing.T) {
	f := newServerFixture(t)
	matchID := f.seedScheduledMatch(t)

	rec := f.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = f.do(t, http.MethodPost, "/make_prediction/"+itoa(matchID), reg.Token,
		map[string]string{"prediction": "Scheduled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/make_prediction/999999", reg.Token,
		map[string]string{"prediction": "Draw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/make_prediction/"+itoa(matchID), "",
		map[string]string{"prediction": "Draw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	f := newServerFixture(t)
	body := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse",
	}

	rec := f.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPredictListsUpcoming(t *testing.T) {
	f := newServerFixture(t)
	f.seedScheduledMatch(t)

	rec := f.do(t, http.MethodGet, "/predict", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Predictions []struct {
			Prediction string  `json:"prediction"`
			Confidence float64 `json:"confidence"`
		} `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 1)
	assert.Equal(t, "Home Win", resp.Predictions[0].Prediction)
	assert.Greater(t, resp.Predictions[0].Confidence, 0.0)
}

func TestTeamPage(t *testing.T) {
	f := newServerFixture(t)
	f.seedScheduledMatch(t)

	rec := f.do(t, http.MethodGet, "/team/57", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Arsenal")

	rec = f.do(t, http.MethodGet, "/team/12345", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/team/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferencesRoundTrip(t *testing.T) {
	f := newServerFixture(t)
	f.seedScheduledMatch(t)

	rec := f.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = f.do(t, http.MethodPost, "/preferences", reg.Token, map[string]any{
		"timezone":         "Europe/London",
		"favorite_team_id": 57,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/preferences", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs domain.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	assert.Equal(t, "Europe/London", prefs.Timezone)
	assert.Equal(t, int64(57), prefs.FavoriteTeamID)

	rec = f.do(t, http.MethodPost, "/preferences", reg.Token, map[string]any{
		"timezone": "Not/AZone",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
