// Package lastfm resolves artist genres from Last.fm top tags. It backs the
// genre seeds when Spotify returns none for a user's top artists.
package lastfm

import (
	"errors"
	"time"
)

// ErrMissingAPIKey is returned when no Last.fm API key is configured.
var ErrMissingAPIKey = errors.New("missing Last.fm API key (LASTFM_API_KEY)")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey string

	// TagsPerArtist caps how many top tags count as an artist's genres
	// (default: 3).
	TagsPerArtist int

	BaseURL string        // default: the public API endpoint
	Timeout time.Duration // default: 10s
}
