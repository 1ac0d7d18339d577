package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/spotify"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

var (
	errNoSession  = errors.New("not logged in")
	errNoDatabase = errors.New("run history is not configured")
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health. Database is set only when
// run history is configured.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, taste.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, spotify.ErrUnavailable), errors.Is(err, errNoDatabase):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// fail logs err and writes the mapped status. 5xx responses hide the
// underlying error.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	msg := err.Error()
	if status >= http.StatusInternalServerError && !errors.Is(err, errNoDatabase) {
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}
