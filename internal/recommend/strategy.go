package recommend

import (
	"context"
	"fmt"

	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/metrics"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// Strategy names.
const (
	ByTopSongs       = "bytopsongs"
	ByArtistAndGenre = "byartistandgenre"
	ByRecentlyPlayed = "byrecentlyplayed"
)

// Sources are the inputs a SeedSelector may draw on. Fallback may be nil.
type Sources struct {
	Catalog  Catalog
	Fallback GenreFallback
}

// Selection is what a SeedSelector picked: the tracks whose features form
// the profile, and the seeds that anchor the recommendation request.
type Selection struct {
	FeatureTrackIDs []string
	Seeds           taste.Seeds
}

// SeedSelector picks the profile tracks and seeds for a run.
type SeedSelector interface {
	Select(ctx context.Context, src Sources) (Selection, error)
}

// Strategy is a seed selector plus the query parameters it is run with.
type Strategy struct {
	Name            string
	Selector        SeedSelector
	PopularityFloor int
	Limit           int
}

// TopTracksStrategy seeds with the user's 5 long-term top tracks.
func TopTracksStrategy() Strategy {
	return Strategy{
		Name:            ByTopSongs,
		Selector:        TopTracksSeeds{Range: LongTerm, Count: 5},
		PopularityFloor: 40,
		Limit:           15,
	}
}

// ArtistGenreStrategy profiles the 5 short-term top tracks and seeds with the
// 2 medium-term top artists plus their 3 most frequent genres.
func ArtistGenreStrategy() Strategy {
	return Strategy{
		Name: ByArtistAndGenre,
		Selector: ArtistGenreSeeds{
			FeatureRange: ShortTerm,
			FeatureCount: 5,
			ArtistRange:  MediumTerm,
			ArtistCount:  2,
			GenreCount:   3,
		},
		PopularityFloor: 20,
		Limit:           15,
	}
}

// RecentlyPlayedStrategy seeds with the 5 most recently played tracks.
func RecentlyPlayedStrategy() Strategy {
	return Strategy{
		Name:            ByRecentlyPlayed,
		Selector:        RecentlyPlayedSeeds{Count: 5},
		PopularityFloor: 40,
		Limit:           15,
	}
}

// Strategies returns every built-in strategy.
func Strategies() []Strategy {
	return []Strategy{TopTracksStrategy(), ArtistGenreStrategy(), RecentlyPlayedStrategy()}
}

// StrategyByName looks up a built-in strategy.
func StrategyByName(name string) (Strategy, bool) {
	for _, s := range Strategies() {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

// TopTracksSeeds uses the top tracks of a time range both as profile
// tracks and as seeds.
type TopTracksSeeds struct {
	Range TimeRange
	Count int
}

func (s TopTracksSeeds) Select(ctx context.Context, src Sources) (Selection, error) {
	ids, err := src.Catalog.TopTracks(ctx, s.Range, s.Count)
	if err != nil {
		return Selection{}, fmt.Errorf("fetching top tracks: %w", err)
	}
	return trackSelection(ids)
}

// RecentlyPlayedSeeds uses the most recently played tracks both as profile
// tracks and as seeds.
type RecentlyPlayedSeeds struct {
	Count int
}

func (s RecentlyPlayedSeeds) Select(ctx context.Context, src Sources) (Selection, error) {
	ids, err := src.Catalog.RecentlyPlayed(ctx, s.Count)
	if err != nil {
		return Selection{}, fmt.Errorf("fetching recently played: %w", err)
	}
	return trackSelection(ids)
}

func trackSelection(ids []string) (Selection, error) {
	if len(ids) == 0 {
		return Selection{}, ErrNoSeeds
	}
	return Selection{
		FeatureTrackIDs: ids,
		Seeds:           taste.Seeds{TrackIDs: ids},
	}, nil
}

// ArtistGenreSeeds profiles top tracks of one range and seeds with the top
// artists of another range plus their most frequent genres. When the
// platform reports no genres for those artists, the Fallback source is
// asked by artist name.
type ArtistGenreSeeds struct {
	FeatureRange TimeRange
	FeatureCount int
	ArtistRange  TimeRange
	ArtistCount  int
	GenreCount   int
}

func (s ArtistGenreSeeds) Select(ctx context.Context, src Sources) (Selection, error) {
	trackIDs, err := src.Catalog.TopTracks(ctx, s.FeatureRange, s.FeatureCount)
	if err != nil {
		return Selection{}, fmt.Errorf("fetching top tracks: %w", err)
	}

	artists, err := src.Catalog.TopArtists(ctx, s.ArtistRange, s.ArtistCount)
	if err != nil {
		return Selection{}, fmt.Errorf("fetching top artists: %w", err)
	}
	if len(artists) == 0 {
		return Selection{}, ErrNoSeeds
	}

	ids := make([]string, len(artists))
	names := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
		names[i] = a.Name
	}

	genres, err := src.Catalog.ArtistGenres(ctx, ids)
	if err != nil {
		return Selection{}, fmt.Errorf("fetching artist genres: %w", err)
	}
	if len(genres) == 0 && src.Fallback != nil {
		genres = fallbackGenres(ctx, src.Fallback, names)
	}

	return Selection{
		FeatureTrackIDs: trackIDs,
		Seeds: taste.Seeds{
			ArtistIDs: ids,
			Genres:    taste.TopGenres(genres, s.GenreCount),
		},
	}, nil
}

// fallbackGenres never fails the run: the artist seeds alone are enough.
func fallbackGenres(ctx context.Context, fb GenreFallback, names []string) []string {
	genres, err := fb.ArtistGenres(ctx, names)
	switch {
	case err != nil:
		metrics.GenreFallback.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Strs("artists", names).Msg("genre fallback failed")
		return nil
	case len(genres) == 0:
		metrics.GenreFallback.WithLabelValues("empty").Inc()
	default:
		metrics.GenreFallback.WithLabelValues("hit").Inc()
	}
	return genres
}
