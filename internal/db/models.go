package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// Run is a row of recommendation_runs.
type Run struct {
	ID          uuid.UUID
	UserID      string
	Strategy    string
	PlaylistID  string
	TrackCount  int
	SeedTracks  []string
	SeedArtists []string
	SeedGenres  []string
	CreatedAt   time.Time
}

// fromRecommendRun converts a service run into a row. A missing or invalid
// ID is replaced with a new one.
func fromRecommendRun(r recommend.Run) Run {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.New()
	}
	return Run{
		ID:          id,
		UserID:      r.UserID,
		Strategy:    r.Strategy,
		PlaylistID:  r.PlaylistID,
		TrackCount:  r.TrackCount,
		SeedTracks:  nonNil(r.Seeds.TrackIDs),
		SeedArtists: nonNil(r.Seeds.ArtistIDs),
		SeedGenres:  nonNil(r.Seeds.Genres),
		CreatedAt:   r.CreatedAt,
	}
}

func (r Run) toRecommendRun() recommend.Run {
	return recommend.Run{
		ID:         r.ID.String(),
		UserID:     r.UserID,
		Strategy:   r.Strategy,
		PlaylistID: r.PlaylistID,
		TrackCount: r.TrackCount,
		Seeds: taste.Seeds{
			TrackIDs:  r.SeedTracks,
			ArtistIDs: r.SeedArtists,
			Genres:    r.SeedGenres,
		},
		CreatedAt: r.CreatedAt,
	}
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
