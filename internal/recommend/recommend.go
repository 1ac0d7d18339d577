// Package recommend builds a taste profile from a user's listening history,
// asks the streaming platform for matching tracks and writes them to a
// playlist.
//
// The platform is reached only through the Catalog, Recommender and
// PlaylistWriter interfaces. A seed-selection Strategy decides which part of
// the history anchors the request; everything after seed selection is shared.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// ErrNoSeeds is returned when a strategy finds nothing to anchor
// recommendations on. It wraps taste.ErrInvalidInput.
var ErrNoSeeds = fmt.Errorf("%w: no seeds available", taste.ErrInvalidInput)

// TimeRange selects the window used for a user's top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // roughly the last 4 weeks
	MediumTerm TimeRange = "medium_term" // roughly the last 6 months
	LongTerm   TimeRange = "long_term"   // several years
)

// TrackFeatures pairs a track with its audio features.
type TrackFeatures struct {
	TrackID  string
	Features taste.Record
}

// Artist identifies an artist by platform ID and display name.
type Artist struct {
	ID   string
	Name string
}

// TrackMeta is the catalog metadata needed to describe a track.
type TrackMeta struct {
	ID       string
	URI      string
	Name     string
	AlbumID  string
	ArtistID string // first credited artist; empty if none
}

// Catalog reads a user's listening history and catalog metadata.
type Catalog interface {
	TopTracks(ctx context.Context, timeRange TimeRange, limit int) ([]string, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]string, error)
	// AudioFeatures omits tracks that have no features.
	AudioFeatures(ctx context.Context, trackIDs []string) ([]TrackFeatures, error)
	TopArtists(ctx context.Context, timeRange TimeRange, limit int) ([]Artist, error)
	// ArtistGenres returns the genres of all given artists, flattened and
	// with repeats.
	ArtistGenres(ctx context.Context, artistIDs []string) ([]string, error)
	Track(ctx context.Context, id string) (TrackMeta, error)
	Album(ctx context.Context, id string) (string, error)
	Artist(ctx context.Context, id string) (string, error)
}

// Recommender returns the IDs of tracks matching a query.
type Recommender interface {
	Recommend(ctx context.Context, q taste.Query) ([]string, error)
}

// PlaylistWriter owns the output playlist.
type PlaylistWriter interface {
	CurrentUserID(ctx context.Context) (string, error)
	// FindOrCreatePlaylist returns the ID of the user's playlist with exactly
	// this name, creating it if absent.
	FindOrCreatePlaylist(ctx context.Context, userID, name, description string) (string, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// Platform is everything the service needs from the streaming platform.
type Platform interface {
	Catalog
	Recommender
	PlaylistWriter
}

// GenreFallback supplies genres for artists the platform has none for.
type GenreFallback interface {
	ArtistGenres(ctx context.Context, artistNames []string) ([]string, error)
}

// Run is the record of one generated playlist.
type Run struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Strategy   string      `json:"strategy"`
	PlaylistID string      `json:"playlist_id"`
	TrackCount int         `json:"track_count"`
	Seeds      taste.Seeds `json:"seeds"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Recorder persists runs. Implementations assign ID and CreatedAt when empty.
type Recorder interface {
	RecordRun(ctx context.Context, run Run) error
}

// RecommendedTrack describes one track written to the playlist.
type RecommendedTrack struct {
	URI    string `json:"uri"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Track  string `json:"track"`
}

// Result is the outcome of a successful run.
type Result struct {
	Strategy   string             `json:"strategy"`
	PlaylistID string             `json:"playlist_id"`
	Profile    taste.Profile      `json:"profile"`
	Query      taste.Query        `json:"query"`
	Tracks     []RecommendedTrack `json:"tracks"`
}
