package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/baristaner/spotify-song-recommendation/internal/clustering"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

var testConfig = Config{
	PlaylistName:        "algorithm or should i say algo-rhytm?",
	PlaylistDescription: "https://github.com/baristaner",
}

// topSongsPlatform returns a platform ready for the top-songs strategy with
// two profile tracks and the given recommended IDs, all resolvable.
func topSongsPlatform(recommended ...string) *fakePlatform {
	p := newFakePlatform()
	p.topTracks[LongTerm] = []string{"seed1", "seed2"}
	p.features["seed1"] = featureRecord(0.2)
	p.features["seed2"] = featureRecord(0.6)
	p.recommended = recommended
	for _, id := range recommended {
		p.addTrack(id)
	}
	return p
}

func TestRun_TopSongs(t *testing.T) {
	p := topSongsPlatform("r1", "r2", "r3")
	rec := &fakeRecorder{}
	svc := NewService(p, testConfig, WithRecorder(rec))

	result, err := svc.Run(context.Background(), TopTracksStrategy())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Strategy != ByTopSongs || result.PlaylistID != "playlist-1" {
		t.Errorf("Result = %+v", result)
	}

	for _, f := range taste.Features {
		if diff := result.Profile[f] - 0.4; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("profile[%s] = %v, want 0.4", f, result.Profile[f])
		}
	}

	if len(p.queries) != 1 {
		t.Fatalf("Recommend called %d times, want 1", len(p.queries))
	}
	q := p.queries[0]
	if q.MinPopularity != 40 || q.Limit != 15 {
		t.Errorf("query popularity/limit = %d/%d, want 40/15", q.MinPopularity, q.Limit)
	}
	if !reflect.DeepEqual(q.Seeds.TrackIDs, []string{"seed1", "seed2"}) {
		t.Errorf("query seeds = %+v", q.Seeds)
	}
	if th, _ := q.Threshold(taste.Acousticness); th.Bound != taste.Max {
		t.Errorf("acousticness bound = %v, want max", th.Bound)
	}

	wantTracks := []RecommendedTrack{
		{URI: "spotify:track:r1", Artist: "Artist r1", Album: "Album r1", Track: "Track r1"},
		{URI: "spotify:track:r2", Artist: "Artist r2", Album: "Album r2", Track: "Track r2"},
		{URI: "spotify:track:r3", Artist: "Artist r3", Album: "Album r3", Track: "Track r3"},
	}
	if !reflect.DeepEqual(result.Tracks, wantTracks) {
		t.Errorf("Tracks = %+v, want %+v", result.Tracks, wantTracks)
	}
	if !reflect.DeepEqual(p.added, []string{"spotify:track:r1", "spotify:track:r2", "spotify:track:r3"}) {
		t.Errorf("added = %v", p.added)
	}
	if p.playlistName != testConfig.PlaylistName || p.playlistDesc != testConfig.PlaylistDescription {
		t.Errorf("playlist = %q / %q", p.playlistName, p.playlistDesc)
	}

	if len(rec.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(rec.runs))
	}
	run := rec.runs[0]
	if run.UserID != "user-1" || run.Strategy != ByTopSongs || run.TrackCount != 3 || run.PlaylistID != "playlist-1" {
		t.Errorf("recorded run = %+v", run)
	}
}

func TestRun_DropsFailedDetailsAndKeepsOrder(t *testing.T) {
	p := topSongsPlatform("r1", "r2", "r3", "r4", "r5", "r6", "r7")
	delete(p.tracks, "r2")
	delete(p.albums, "album-r4")
	delete(p.artists, "artist-r6")
	meta := p.tracks["r7"]
	meta.ArtistID = ""
	p.tracks["r7"] = meta

	svc := NewService(p, testConfig, WithConcurrency(3))
	result, err := svc.Run(context.Background(), TopTracksStrategy())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []string
	for _, tr := range result.Tracks {
		got = append(got, tr.URI)
	}
	want := []string{"spotify:track:r1", "spotify:track:r3", "spotify:track:r5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("track URIs = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(p.added, want) {
		t.Errorf("added = %v, want %v", p.added, want)
	}
}

func TestRun_SkipsAddWhenNothingResolved(t *testing.T) {
	p := topSongsPlatform()
	p.recommended = []string{"ghost1", "ghost2"}

	result, err := NewService(p, testConfig).Run(context.Background(), TopTracksStrategy())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Tracks) != 0 {
		t.Errorf("Tracks = %v, want empty", result.Tracks)
	}
	if result.Tracks == nil {
		t.Error("Tracks is nil, want empty slice")
	}
	if p.addCalls != 0 {
		t.Errorf("AddTracks called %d times, want 0", p.addCalls)
	}
	if result.PlaylistID != "playlist-1" {
		t.Errorf("PlaylistID = %q, want playlist-1", result.PlaylistID)
	}
}

func TestRun_NoFeaturesIsInvalidInput(t *testing.T) {
	p := topSongsPlatform("r1")
	p.features = map[string]taste.Record{}

	_, err := NewService(p, testConfig).Run(context.Background(), TopTracksStrategy())
	if !errors.Is(err, taste.ErrInvalidInput) {
		t.Errorf("Run() error = %v, want ErrInvalidInput", err)
	}
	if len(p.queries) != 0 {
		t.Error("Recommend called despite empty profile")
	}
}

func TestRun_CollaboratorErrors(t *testing.T) {
	for _, op := range []string{"TopTracks", "AudioFeatures", "Recommend", "CurrentUserID", "FindOrCreatePlaylist", "AddTracks"} {
		t.Run(op, func(t *testing.T) {
			p := topSongsPlatform("r1")
			p.fail[op] = true

			_, err := NewService(p, testConfig).Run(context.Background(), TopTracksStrategy())
			if !errors.Is(err, errFake) {
				t.Errorf("Run() error = %v, want errFake", err)
			}
		})
	}
}

func TestRun_RecorderFailureIsIgnored(t *testing.T) {
	p := topSongsPlatform("r1")
	rec := &fakeRecorder{err: errFake}

	if _, err := NewService(p, testConfig, WithRecorder(rec)).Run(context.Background(), TopTracksStrategy()); err != nil {
		t.Errorf("Run() error = %v, want nil when recorder fails", err)
	}
	if len(rec.runs) != 1 {
		t.Errorf("recorder called %d times, want 1", len(rec.runs))
	}
}

func TestRun_ArtistAndGenre(t *testing.T) {
	p := newFakePlatform()
	p.topTracks[ShortTerm] = []string{"s1"}
	p.features["s1"] = featureRecord(0.5)
	p.topArtists[MediumTerm] = []Artist{{ID: "a1", Name: "A"}, {ID: "a2", Name: "B"}}
	p.genres["a1"] = []string{"indie"}
	p.recommended = []string{"r1"}
	p.addTrack("r1")

	result, err := NewService(p, testConfig).Run(context.Background(), ArtistGenreStrategy())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	q := result.Query
	if q.MinPopularity != 20 || q.Limit != 15 {
		t.Errorf("popularity/limit = %d/%d, want 20/15", q.MinPopularity, q.Limit)
	}
	if !reflect.DeepEqual(q.Seeds, taste.Seeds{ArtistIDs: []string{"a1", "a2"}, Genres: []string{"indie"}}) {
		t.Errorf("Seeds = %+v", q.Seeds)
	}
	if len(q.Seeds.TrackIDs) != 0 {
		t.Errorf("TrackIDs = %v, want none", q.Seeds.TrackIDs)
	}
}

func TestRun_Cancelled(t *testing.T) {
	p := topSongsPlatform("r1", "r2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(p, testConfig)
	if _, _, err := svc.describeTracks(ctx, []string{"r1", "r2"}); !errors.Is(err, context.Canceled) {
		t.Errorf("describeTracks() error = %v, want context.Canceled", err)
	}
}

func TestMoods(t *testing.T) {
	p := newFakePlatform()
	p.topTracks[ShortTerm] = []string{"a", "b", "c"}
	p.features["a"] = featureRecord(0.9)
	p.features["b"] = featureRecord(0.9)

	summary, err := NewService(p, testConfig).Moods(context.Background(), clustering.Config{NumClusters: 1, MinClusterSize: 1})
	if err != nil {
		t.Fatalf("Moods() error = %v", err)
	}
	if len(summary.Moods) != 1 {
		t.Fatalf("got %d moods, want 1", len(summary.Moods))
	}
	if !reflect.DeepEqual(summary.Moods[0].TrackIDs, []string{"a", "b"}) {
		t.Errorf("TrackIDs = %v, want [a b]", summary.Moods[0].TrackIDs)
	}
	if got := p.topTrackCalls[0]; got != (topTrackCall{ShortTerm, moodTrackLimit}) {
		t.Errorf("TopTracks called with %+v", got)
	}
	if summary.Outliers == nil {
		t.Error("Outliers is nil, want empty slice")
	}
}

func TestMoods_Error(t *testing.T) {
	p := newFakePlatform()
	p.fail["AudioFeatures"] = true

	if _, err := NewService(p, testConfig).Moods(context.Background(), clustering.DefaultConfig()); !errors.Is(err, errFake) {
		t.Errorf("Moods() error = %v, want errFake", err)
	}
}
