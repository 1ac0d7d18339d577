package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

var errFake = errors.New("fake failure")

// fakePlatform implements Platform from in-memory fixtures.
type fakePlatform struct {
	mu sync.Mutex

	topTracks      map[TimeRange][]string
	recentlyPlayed []string
	features       map[string]taste.Record
	topArtists     map[TimeRange][]Artist
	genres         map[string][]string
	tracks         map[string]TrackMeta
	albums         map[string]string
	artists        map[string]string
	recommended    []string

	// failing operations, by name
	fail map[string]bool

	// recorded calls
	topTrackCalls []topTrackCall
	queries       []taste.Query
	playlistName  string
	playlistDesc  string
	added         []string
	addCalls      int
}

type topTrackCall struct {
	timeRange TimeRange
	limit     int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		topTracks:  map[TimeRange][]string{},
		features:   map[string]taste.Record{},
		topArtists: map[TimeRange][]Artist{},
		genres:     map[string][]string{},
		tracks:     map[string]TrackMeta{},
		albums:     map[string]string{},
		artists:    map[string]string{},
		fail:       map[string]bool{},
	}
}

// addTrack registers a fully resolvable recommended track.
func (f *fakePlatform) addTrack(id string) {
	f.tracks[id] = TrackMeta{
		ID:       id,
		URI:      "spotify:track:" + id,
		Name:     "Track " + id,
		AlbumID:  "album-" + id,
		ArtistID: "artist-" + id,
	}
	f.albums["album-"+id] = "Album " + id
	f.artists["artist-"+id] = "Artist " + id
}

func (f *fakePlatform) failing(op string) error {
	if f.fail[op] {
		return fmt.Errorf("%s: %w", op, errFake)
	}
	return nil
}

func (f *fakePlatform) TopTracks(_ context.Context, timeRange TimeRange, limit int) ([]string, error) {
	f.mu.Lock()
	f.topTrackCalls = append(f.topTrackCalls, topTrackCall{timeRange, limit})
	f.mu.Unlock()
	if err := f.failing("TopTracks"); err != nil {
		return nil, err
	}
	ids := f.topTracks[timeRange]
	return ids[:min(limit, len(ids))], nil
}

func (f *fakePlatform) RecentlyPlayed(_ context.Context, limit int) ([]string, error) {
	if err := f.failing("RecentlyPlayed"); err != nil {
		return nil, err
	}
	return f.recentlyPlayed[:min(limit, len(f.recentlyPlayed))], nil
}

func (f *fakePlatform) AudioFeatures(_ context.Context, ids []string) ([]TrackFeatures, error) {
	if err := f.failing("AudioFeatures"); err != nil {
		return nil, err
	}
	var out []TrackFeatures
	for _, id := range ids {
		if r, ok := f.features[id]; ok {
			out = append(out, TrackFeatures{TrackID: id, Features: r})
		}
	}
	return out, nil
}

func (f *fakePlatform) TopArtists(_ context.Context, timeRange TimeRange, limit int) ([]Artist, error) {
	if err := f.failing("TopArtists"); err != nil {
		return nil, err
	}
	a := f.topArtists[timeRange]
	return a[:min(limit, len(a))], nil
}

func (f *fakePlatform) ArtistGenres(_ context.Context, ids []string) ([]string, error) {
	if err := f.failing("ArtistGenres"); err != nil {
		return nil, err
	}
	var out []string
	for _, id := range ids {
		out = append(out, f.genres[id]...)
	}
	return out, nil
}

func (f *fakePlatform) Track(_ context.Context, id string) (TrackMeta, error) {
	t, ok := f.tracks[id]
	if !ok {
		return TrackMeta{}, fmt.Errorf("track %s: %w", id, errFake)
	}
	return t, nil
}

func (f *fakePlatform) Album(_ context.Context, id string) (string, error) {
	a, ok := f.albums[id]
	if !ok {
		return "", fmt.Errorf("album %s: %w", id, errFake)
	}
	return a, nil
}

func (f *fakePlatform) Artist(_ context.Context, id string) (string, error) {
	a, ok := f.artists[id]
	if !ok {
		return "", fmt.Errorf("artist %s: %w", id, errFake)
	}
	return a, nil
}

func (f *fakePlatform) Recommend(_ context.Context, q taste.Query) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := f.failing("Recommend"); err != nil {
		return nil, err
	}
	return f.recommended, nil
}

func (f *fakePlatform) CurrentUserID(context.Context) (string, error) {
	if err := f.failing("CurrentUserID"); err != nil {
		return "", err
	}
	return "user-1", nil
}

func (f *fakePlatform) FindOrCreatePlaylist(_ context.Context, _, name, description string) (string, error) {
	if err := f.failing("FindOrCreatePlaylist"); err != nil {
		return "", err
	}
	f.playlistName = name
	f.playlistDesc = description
	return "playlist-1", nil
}

func (f *fakePlatform) AddTracks(_ context.Context, _ string, uris []string) error {
	f.addCalls++
	if err := f.failing("AddTracks"); err != nil {
		return err
	}
	f.added = append(f.added, uris...)
	return nil
}

type fakeFallback struct {
	genres []string
	err    error
	calls  [][]string
}

func (f *fakeFallback) ArtistGenres(_ context.Context, names []string) ([]string, error) {
	f.calls = append(f.calls, names)
	return f.genres, f.err
}

type fakeRecorder struct {
	runs []Run
	err  error
}

func (f *fakeRecorder) RecordRun(_ context.Context, run Run) error {
	f.runs = append(f.runs, run)
	return f.err
}

func featureRecord(v float64) taste.Record {
	r := taste.Record{}
	for _, f := range taste.Features {
		r[f] = v
	}
	return r
}
