package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
)

var timeRanges = map[recommend.TimeRange]spotify.Range{
	recommend.ShortTerm:  spotify.ShortTermRange,
	recommend.MediumTerm: spotify.MediumTermRange,
	recommend.LongTerm:   spotify.LongTermRange,
}

func toRange(tr recommend.TimeRange) (spotify.Range, error) {
	r, ok := timeRanges[tr]
	if !ok {
		return "", fmt.Errorf("unknown time range %q", tr)
	}
	return r, nil
}

// TopTracks returns the IDs of the user's top tracks for a time range.
func (c *Client) TopTracks(ctx context.Context, timeRange recommend.TimeRange, limit int) ([]string, error) {
	r, err := toRange(timeRange)
	if err != nil {
		return nil, err
	}

	page, err := call(c, "top_tracks", func() (*spotify.FullTrackPage, error) {
		return c.api.CurrentUsersTopTracks(ctx, spotify.Limit(limit), spotify.Timerange(r))
	})
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	ids := make([]string, len(page.Tracks))
	for i, t := range page.Tracks {
		ids[i] = t.ID.String()
	}
	return ids, nil
}

// RecentlyPlayed returns the IDs of the user's most recently played tracks.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]string, error) {
	items, err := call(c, "recently_played", func() ([]spotify.RecentlyPlayedItem, error) {
		return c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	})
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Track.ID.String()
	}
	return ids, nil
}

// Track returns the metadata needed to describe a track.
func (c *Client) Track(ctx context.Context, id string) (recommend.TrackMeta, error) {
	t, err := call(c, "track", func() (*spotify.FullTrack, error) {
		return c.api.GetTrack(ctx, spotify.ID(id))
	})
	if err != nil {
		return recommend.TrackMeta{}, fmt.Errorf("fetching track %s: %w", id, err)
	}

	meta := recommend.TrackMeta{
		ID:      t.ID.String(),
		URI:     string(t.URI),
		Name:    t.Name,
		AlbumID: t.Album.ID.String(),
	}
	if len(t.Artists) > 0 {
		meta.ArtistID = t.Artists[0].ID.String()
	}
	return meta, nil
}

// Album returns an album's name.
func (c *Client) Album(ctx context.Context, id string) (string, error) {
	a, err := call(c, "album", func() (*spotify.FullAlbum, error) {
		return c.api.GetAlbum(ctx, spotify.ID(id))
	})
	if err != nil {
		return "", fmt.Errorf("fetching album %s: %w", id, err)
	}
	return a.Name, nil
}
