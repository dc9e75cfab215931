package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"premier-tracker/internal/config"
	"premier-tracker/internal/constants"
	"premier-tracker/internal/domain"
	"premier-tracker/internal/middleware"
	"premier-tracker/internal/service"

	"github.com/rs/zerolog"
)

// Server owns the HTTP route handlers. Transport concerns only; all
// domain behavior lives in the services.
type Server struct {
	league      *service.LeagueService
	ingest      *service.IngestService
	predictions *service.PredictionService
	auth        *service.AuthService
	cfg         *config.Config
	logger      zerolog.Logger
	authLimiter *middleware.RateLimiter
}

func NewServer(
	league *service.LeagueService,
	ingest *service.IngestService,
	predictions *service.PredictionService,
	auth *service.AuthService,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		league:      league,
		ingest:      ingest,
		predictions: predictions,
		auth:        auth,
		cfg:         cfg,
		logger:      logger,
		authLimiter: middleware.NewRateLimiter(constants.AuthRateLimit, constants.AuthRateWindow),
	}
}

// Close stops the server's background workers.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// Routes builds the mux. Auth-sensitive routes get the stricter
// limiter; account routes additionally require a valid token.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(s.cfg)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /update", s.handleUpdate)
	mux.HandleFunc("GET /predict", s.handlePredict)
	mux.HandleFunc("GET /team/{id}", s.handleTeam)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.Handle("POST /register", s.authLimiter.Middleware(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /login", s.authLimiter.Middleware(http.HandlerFunc(s.handleLogin)))

	mux.Handle("GET /profile", requireAuth(http.HandlerFunc(s.handleProfile)))
	mux.Handle("GET /preferences", requireAuth(http.HandlerFunc(s.handleGetPreferences)))
	mux.Handle("POST /preferences", requireAuth(http.HandlerFunc(s.handleSavePreferences)))
	mux.Handle("POST /make_prediction/{match_id}", requireAuth(http.HandlerFunc(s.handleMakePrediction)))

	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	overview, err := s.league.Overview(r.Context(),
		r.URL.Query().Get("page"), r.URL.Query().Get("size"), r.URL.Query().Get("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := overviewResponse{
		Matches:      toMatchJSONs(overview.Matches),
		TotalMatches: overview.TotalMatches,
		Page:         overview.Page,
		PageSize:     overview.PageSize,
		Standings:    toTableJSONs(overview.Standings),
	}
	if overview.LastRun != nil && overview.LastRun.Status == domain.RunDegraded {
		resp.Notice = "fixture data may be stale: the last update could not reach the fixtures API"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	run, err := s.ingest.Run(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runResponse{
		ID:       run.ID,
		Status:   string(run.Status),
		Fetched:  run.Fetched,
		Inserted: run.Inserted,
		Updated:  run.Updated,
		Skipped:  run.Skipped,
		Error:    run.Error,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	upcoming, err := s.predictions.Upcoming(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]predictionJSON, 0, len(upcoming))
	for _, p := range upcoming {
		resp = append(resp, predictionJSON{
			Match:      toMatchJSON(p.Match),
			Prediction: string(p.Predicted.Result),
			Confidence: p.Predicted.Confidence,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"predictions": resp})
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid team id"})
		return
	}

	page, err := s.league.TeamPage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := teamPageResponse{
		Team:    toTeamJSON(page.Team),
		Matches: toMatchJSONs(page.Matches),
	}
	if page.Standing != nil {
		row := toTableJSON(*page.Standing)
		resp.Standing = &row
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userJSON{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userJSON{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

// Sessions are stateless tokens; logout is the client discarding its
// copy. The route exists so clients have a uniform call to make.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	profile, err := s.auth.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	preds := make([]userPredictionJSON, 0, len(profile.Predictions))
	for _, p := range profile.Predictions {
		preds = append(preds, userPredictionJSON{
			Match:       toMatchJSON(p.Match),
			Prediction:  string(p.Prediction.Prediction),
			PredictedAt: p.Prediction.PredictedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, profileResponse{
		User: userJSON{
			ID:        profile.User.ID,
			Username:  profile.User.Username,
			Email:     profile.User.Email,
			CreatedAt: profile.User.CreatedAt,
		},
		Predictions: preds,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	prefs, err := s.auth.GetPreferences(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	var prefs domain.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.auth.SavePreferences(r.Context(), userID, &prefs); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prefs)
}

type makePredictionRequest struct {
	Prediction string `json:"prediction"`
}

func (s *Server) handleMakePrediction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	matchID, err := strconv.ParseInt(r.PathValue("match_id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid match id"})
		return
	}

	var req makePredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.predictions.Submit(r.Context(), userID, matchID, domain.Result(req.Prediction)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "prediction recorded"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicateUser):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrMatchDecided):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidOutcome):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		s.logger.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("request failed")
	}

	s.writeJSON(w, status, errorResponse{Error: msg})
}
