package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/baristaner/spotify-song-recommendation/internal/auth"
	"github.com/baristaner/spotify-song-recommendation/internal/clustering"
	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
)

const (
	stateCookieName = "oauth_state"
	healthTimeout   = 2 * time.Second
)

// History stores and lists recommendation runs.
type History interface {
	recommend.Recorder
	ListForUser(ctx context.Context, userID string, limit int) ([]recommend.Run, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth        *spotifyauth.Authenticator
	sessions    *SessionStore
	platforms   PlatformFactory
	history     History
	fallback    recommend.GenreFallback
	database    Pinger
	recommend   recommend.Config
	concurrency int
	moods       clustering.Config
}

// Index describes the service (GET /).
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	authenticated := h.sessions.GetFromRequest(r) != nil

	endpoints := make([]string, 0, 3)
	for _, s := range recommend.Strategies() {
		endpoints = append(endpoints, "/recommendation/"+s.Name)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":            "spotify-song-recommendation",
		"docs":            "/docs/",
		"login":           "/login",
		"authenticated":   authenticated,
		"recommendations": endpoints,
	})
}

// Login initiates the Spotify OAuth flow (GET /login).
// @Summary Start Spotify login
// @Tags Auth
// @Success 307
// @Router /login [get]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
// @Summary OAuth callback
// @Tags Auth
// @Param state query string true "OAuth state"
// @Param code query string false "Authorization code"
// @Success 303
// @Failure 400 {object} ErrorResponse
// @Router /callback [get]
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing state cookie")
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		writeError(w, http.StatusBadRequest, auth.ErrStateMismatch.Error())
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("spotify auth error: %s", errMsg))
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("exchanging OAuth code")
		writeError(w, http.StatusBadGateway, "failed to get token")
		return
	}

	platform := h.platforms(r.Context(), token)
	userID, err := platform.CurrentUserID(r.Context())
	if err != nil {
		fail(w, r, fmt.Errorf("fetching current user: %w", err))
		return
	}

	if refreshed, err := platform.Token(); err == nil {
		token = refreshed
	}

	session, err := h.sessions.Create(token, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.sessions.SetCookie(w, session)
	logging.Ctx(r.Context()).Info().Str("user_id", userID).Msg("user logged in")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session (POST /logout).
// @Summary End the session
// @Tags Auth
// @Success 303
// @Router /logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Recommendation runs one strategy for the session user.
// @Summary Generate a playlist
// @Description Builds a taste profile, requests matching tracks and appends them to the recommendation playlist
// @Tags Recommendations
// @Produce json
// @Param strategy path string true "Seed selection strategy" Enums(bytopsongs, byartistandgenre, byrecentlyplayed)
// @Success 200 {object} recommend.Result
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /recommendation/{strategy} [get]
func (h *Handlers) Recommendation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "strategy")
	strategy, ok := recommend.StrategyByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown strategy %q", name))
		return
	}

	session, platform, err := h.platform(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer h.saveToken(session, platform)

	result, err := h.service(platform).Run(r.Context(), strategy)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Moods groups the user's recent top tracks by mood.
// @Summary Mood groups
// @Tags Profile
// @Produce json
// @Success 200 {object} recommend.MoodSummary
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /profile/moods [get]
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	session, platform, err := h.platform(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer h.saveToken(session, platform)

	summary, err := h.service(platform).Moods(r.Context(), h.moods)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// RunHistory lists the session user's past runs, newest first.
// @Summary Run history
// @Tags Recommendations
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20)"
// @Success 200 {array} recommend.Run
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /history [get]
func (h *Handlers) RunHistory(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		fail(w, r, errNoSession)
		return
	}
	if h.history == nil {
		fail(w, r, errNoDatabase)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.history.ListForUser(r.Context(), session.UserID, limit)
	if err != nil {
		fail(w, r, fmt.Errorf("listing runs: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// Health reports liveness and, when configured, database reachability.
// @Summary Health
// @Tags Core
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.database == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.database.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

// platform returns the request's session and a client for its token.
func (h *Handlers) platform(r *http.Request) (*Session, Platform, error) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		return nil, nil, errNoSession
	}
	return session, h.platforms(r.Context(), session.Token), nil
}

// saveToken keeps a token refreshed during the request.
func (h *Handlers) saveToken(session *Session, platform Platform) {
	token, err := platform.Token()
	if err != nil || token == nil {
		return
	}
	if session.Token == nil || token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(session.ID, token)
	}
}

func (h *Handlers) service(platform Platform) *recommend.Service {
	opts := []recommend.Option{recommend.WithConcurrency(h.concurrency)}
	if h.fallback != nil {
		opts = append(opts, recommend.WithGenreFallback(h.fallback))
	}
	if h.history != nil {
		opts = append(opts, recommend.WithRecorder(h.history))
	}
	return recommend.NewService(platform, h.recommend, opts...)
}
