package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/baristaner/spotify-song-recommendation/internal/clustering"
	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/metrics"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// DefaultConcurrency is the number of concurrent track detail lookups.
const DefaultConcurrency = 5

// moodTrackLimit is the number of short-term top tracks grouped into moods.
const moodTrackLimit = 50

// Config holds playlist settings.
type Config struct {
	PlaylistName        string
	PlaylistDescription string
}

// Service runs recommendation strategies against one user's platform
// credentials. Create one per authenticated client.
type Service struct {
	platform    Platform
	fallback    GenreFallback
	recorder    Recorder
	cfg         Config
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent track detail lookups.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithGenreFallback sets the source consulted when the platform reports no
// genres for the seed artists.
func WithGenreFallback(fb GenreFallback) Option {
	return func(s *Service) {
		s.fallback = fb
	}
}

// WithRecorder records every successful run.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a service bound to one platform client.
func NewService(platform Platform, cfg Config, opts ...Option) *Service {
	s := &Service{
		platform:    platform,
		cfg:         cfg,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a strategy end to end: select seeds, average the audio
// features of the selected tracks, request recommendations, describe them,
// and append them to the user's playlist.
//
// Tracks whose details cannot be fetched are dropped. An empty feature set
// fails with an error wrapping taste.ErrInvalidInput.
func (s *Service) Run(ctx context.Context, strategy Strategy) (*Result, error) {
	start := time.Now()
	result, failed, err := s.run(ctx, strategy)

	resolved := 0
	if result != nil {
		resolved = len(result.Tracks)
	}
	metrics.RecordRun(strategy.Name, time.Since(start), resolved, failed, err)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, strategy Strategy) (*Result, int, error) {
	log := logging.Ctx(ctx).With().Str("strategy", strategy.Name).Logger()

	sel, err := strategy.Selector.Select(ctx, Sources{Catalog: s.platform, Fallback: s.fallback})
	if err != nil {
		return nil, 0, fmt.Errorf("selecting seeds: %w", err)
	}

	features, err := s.platform.AudioFeatures(ctx, sel.FeatureTrackIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching audio features: %w", err)
	}

	records := make([]taste.Record, len(features))
	for i, f := range features {
		records[i] = f.Features
	}

	profile, err := taste.BuildProfile(records)
	if err != nil {
		return nil, 0, fmt.Errorf("building profile: %w", err)
	}

	query, err := taste.BuildQuery(profile, sel.Seeds, strategy.PopularityFloor, strategy.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("building query: %w", err)
	}

	trackIDs, err := s.platform.Recommend(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching recommendations: %w", err)
	}

	tracks, failed, err := s.describeTracks(ctx, trackIDs)
	if err != nil {
		return nil, failed, err
	}
	if failed > 0 {
		log.Warn().Int("dropped", failed).Int("kept", len(tracks)).Msg("dropped tracks with failed detail lookups")
	}

	userID, err := s.platform.CurrentUserID(ctx)
	if err != nil {
		return nil, failed, fmt.Errorf("fetching current user: %w", err)
	}

	playlistID, err := s.platform.FindOrCreatePlaylist(ctx, userID, s.cfg.PlaylistName, s.cfg.PlaylistDescription)
	if err != nil {
		return nil, failed, fmt.Errorf("finding playlist: %w", err)
	}

	if len(tracks) > 0 {
		uris := make([]string, len(tracks))
		for i, t := range tracks {
			uris[i] = t.URI
		}
		if err := s.platform.AddTracks(ctx, playlistID, uris); err != nil {
			return nil, failed, fmt.Errorf("adding tracks: %w", err)
		}
	}

	log.Info().
		Str("playlist_id", playlistID).
		Int("tracks", len(tracks)).
		Int("profile_tracks", len(records)).
		Msg("recommendation run complete")

	s.record(ctx, Run{
		UserID:     userID,
		Strategy:   strategy.Name,
		PlaylistID: playlistID,
		TrackCount: len(tracks),
		Seeds:      query.Seeds,
	})

	return &Result{
		Strategy:   strategy.Name,
		PlaylistID: playlistID,
		Profile:    profile,
		Query:      query,
		Tracks:     tracks,
	}, failed, nil
}

// record is best effort; a failing recorder never fails the run.
func (s *Service) record(ctx context.Context, run Run) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(ctx, run); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("strategy", run.Strategy).Msg("recording run failed")
	}
}

// describeTracks resolves track, album and first-artist names concurrently.
// Results keep the input order. Tracks with any failed lookup are dropped
// and counted; only context cancellation fails the batch.
func (s *Service) describeTracks(ctx context.Context, ids []string) ([]RecommendedTrack, int, error) {
	if len(ids) == 0 {
		return []RecommendedTrack{}, 0, nil
	}

	type outcome struct {
		track RecommendedTrack
		err   error
	}
	results := make([]outcome, len(ids))

	type workItem struct {
		index int
		id    string
	}
	workCh := make(chan workItem, len(ids))
	for i, id := range ids {
		workCh <- workItem{index: i, id: id}
	}
	close(workCh)

	var wg sync.WaitGroup
	for range min(s.concurrency, len(ids)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				if err := ctx.Err(); err != nil {
					results[work.index] = outcome{err: err}
					continue
				}
				track, err := s.describeTrack(ctx, work.id)
				results[work.index] = outcome{track: track, err: err}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	tracks := make([]RecommendedTrack, 0, len(ids))
	failed := 0
	for i, r := range results {
		if r.err != nil {
			failed++
			logging.Ctx(ctx).Debug().Err(r.err).Str("track_id", ids[i]).Msg("track detail lookup failed")
			continue
		}
		tracks = append(tracks, r.track)
	}
	return tracks, failed, nil
}

func (s *Service) describeTrack(ctx context.Context, id string) (RecommendedTrack, error) {
	meta, err := s.platform.Track(ctx, id)
	if err != nil {
		return RecommendedTrack{}, fmt.Errorf("fetching track %s: %w", id, err)
	}
	if meta.ArtistID == "" {
		return RecommendedTrack{}, fmt.Errorf("track %s has no artist", id)
	}

	album, err := s.platform.Album(ctx, meta.AlbumID)
	if err != nil {
		return RecommendedTrack{}, fmt.Errorf("fetching album %s: %w", meta.AlbumID, err)
	}

	artist, err := s.platform.Artist(ctx, meta.ArtistID)
	if err != nil {
		return RecommendedTrack{}, fmt.Errorf("fetching artist %s: %w", meta.ArtistID, err)
	}

	return RecommendedTrack{
		URI:    meta.URI,
		Artist: artist,
		Album:  album,
		Track:  meta.Name,
	}, nil
}

// MoodSummary groups a user's recent listening into moods.
type MoodSummary struct {
	Moods    []clustering.Mood `json:"moods"`
	Outliers []string          `json:"outliers"`
}

// Moods clusters the audio features of the user's short-term top tracks.
func (s *Service) Moods(ctx context.Context, cfg clustering.Config) (*MoodSummary, error) {
	ids, err := s.platform.TopTracks(ctx, ShortTerm, moodTrackLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	features, err := s.platform.AudioFeatures(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}

	tracks := make([]clustering.Track, len(features))
	for i, f := range features {
		tracks[i] = clustering.Track{ID: f.TrackID, Features: f.Features}
	}

	moods, outliers := clustering.DetectMoods(tracks, cfg)
	if moods == nil {
		moods = []clustering.Mood{}
	}
	if outliers == nil {
		outliers = []string{}
	}
	return &MoodSummary{Moods: moods, Outliers: outliers}, nil
}
