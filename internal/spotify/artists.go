package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
)

// TopArtists returns the user's top artists for a time range.
func (c *Client) TopArtists(ctx context.Context, timeRange recommend.TimeRange, limit int) ([]recommend.Artist, error) {
	r, err := toRange(timeRange)
	if err != nil {
		return nil, err
	}

	page, err := call(c, "top_artists", func() (*spotify.FullArtistPage, error) {
		return c.api.CurrentUsersTopArtists(ctx, spotify.Limit(limit), spotify.Timerange(r))
	})
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]recommend.Artist, len(page.Artists))
	for i, a := range page.Artists {
		artists[i] = recommend.Artist{ID: a.ID.String(), Name: a.Name}
	}
	return artists, nil
}

// ArtistGenres returns the genres of every given artist in one flat list.
// Batches requests to max 50 artists per request per Spotify API limits.
func (c *Client) ArtistGenres(ctx context.Context, artistIDs []string) ([]string, error) {
	genres := []string{}
	for i := 0; i < len(artistIDs); i += maxArtistsPerRequest {
		end := min(i+maxArtistsPerRequest, len(artistIDs))
		batch := toIDs(artistIDs[i:end])

		artists, err := call(c, "artists", func() ([]*spotify.FullArtist, error) {
			return c.api.GetArtists(ctx, batch...)
		})
		if err != nil {
			return nil, fmt.Errorf("fetching artists (batch %d-%d): %w", i+1, end, err)
		}

		for _, a := range artists {
			if a != nil {
				genres = append(genres, a.Genres...)
			}
		}
	}
	return genres, nil
}

// Artist returns an artist's name.
func (c *Client) Artist(ctx context.Context, id string) (string, error) {
	a, err := call(c, "artist", func() (*spotify.FullArtist, error) {
		return c.api.GetArtist(ctx, spotify.ID(id))
	})
	if err != nil {
		return "", fmt.Errorf("fetching artist %s: %w", id, err)
	}
	return a.Name, nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
