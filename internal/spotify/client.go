// Package spotify adapts the Spotify Web API to the recommend.Platform
// interfaces.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/metrics"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("spotify unavailable")

// Spotify API batch limits.
const (
	maxTracksPerRequest  = 100
	maxArtistsPerRequest = 50
)

// Breaker guards calls to the Spotify API. One breaker is shared by every
// per-user Client.
type Breaker = gobreaker.CircuitBreaker[any]

// BreakerConfig configures NewBreaker.
type BreakerConfig struct {
	MaxFailures uint32        // consecutive failures before opening
	Timeout     time.Duration // open period before probing again
	Interval    time.Duration // closed-state counter reset period
}

// NewBreaker creates the shared circuit breaker. Client errors (4xx other
// than 429) and cancellations do not count as failures.
func NewBreaker(cfg BreakerConfig) *Breaker {
	const name = "spotify"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isExpected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

func isExpected(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}

// Client wraps the Spotify API client for one authenticated user.
type Client struct {
	api     *spotify.Client
	breaker *Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithBreaker routes every API call through b.
func WithBreaker(b *Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the client's current OAuth token, which may have been
// refreshed since the client was created.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

// call runs fn through the breaker and counts the outcome per operation.
func call[T any](c *Client, op string, fn func() (T, error)) (T, error) {
	var zero T
	if c.breaker == nil {
		v, err := fn()
		metrics.SpotifyRequests.WithLabelValues(op, metrics.Outcome(err)).Inc()
		return v, err
	}

	v, err := c.breaker.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.SpotifyRequests.WithLabelValues(op, "rejected").Inc()
		return zero, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	metrics.SpotifyRequests.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		return zero, err
	}

	t, _ := v.(T)
	return t, nil
}
