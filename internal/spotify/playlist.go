package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

const trackURIPrefix = "spotify:track:"

// CurrentUserID returns the current user's Spotify ID.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	user, err := call(c, "current_user", func() (*spotify.PrivateUser, error) {
		return c.api.CurrentUser(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// FindOrCreatePlaylist returns the ID of the user's playlist named name,
// creating a public playlist with that name and description if none exists.
func (c *Client) FindOrCreatePlaylist(ctx context.Context, userID, name, description string) (string, error) {
	id, err := c.findPlaylist(ctx, userID, name)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	playlist, err := call(c, "create_playlist", func() (*spotify.FullPlaylist, error) {
		return c.api.CreatePlaylistForUser(ctx, userID, name, description, true, false)
	})
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}
	return playlist.ID.String(), nil
}

// findPlaylist pages through the user's playlists for an exact name match.
// Returns "" when there is none.
func (c *Client) findPlaylist(ctx context.Context, userID, name string) (string, error) {
	page, err := call(c, "playlists", func() (*spotify.SimplePlaylistPage, error) {
		return c.api.GetPlaylistsForUser(ctx, userID, spotify.Limit(50))
	})
	if err != nil {
		return "", fmt.Errorf("listing playlists: %w", err)
	}

	for {
		for _, p := range page.Playlists {
			if p.Name == name {
				return p.ID.String(), nil
			}
		}

		// The last page is not a failure, so it never reaches the breaker.
		done, err := call(c, "playlists", func() (bool, error) {
			err := c.api.NextPage(ctx, page)
			if errors.Is(err, spotify.ErrNoMorePages) {
				return true, nil
			}
			return false, err
		})
		if err != nil {
			return "", fmt.Errorf("listing playlists: %w", err)
		}
		if done {
			return "", nil
		}
	}
}

// AddTracks appends tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request. Accepts track URIs or bare IDs.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(uris))
	for i, uri := range uris {
		ids[i] = spotify.ID(strings.TrimPrefix(uri, trackURIPrefix))
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		_, err := call(c, "add_tracks", func() (string, error) {
			return c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
		})
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}
