package clustering

import (
	"cmp"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// Config holds mood clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Smaller clusters become outliers
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
	}
}

// Mood is a group of tracks with a similar feel.
type Mood struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	TrackIDs    []string      `json:"track_ids"`
	Centroid    taste.Profile `json:"centroid"`
}

type trackObservation struct {
	id     string
	coords clusters.Coordinates
	record taste.Record
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// moodFeatures are the clustering dimensions, in coordinate order.
var moodFeatures = []taste.Feature{taste.Energy, taste.Valence, taste.Danceability, taste.Acousticness}

// DetectMoods partitions tracks by audio feature similarity.
// Returns moods ordered by size (largest first) and the IDs of tracks that
// fit none: tracks missing a clustering feature, and members of clusters
// smaller than MinClusterSize.
func DetectMoods(tracks []Track, cfg Config) ([]Mood, []string) {
	if len(tracks) == 0 {
		return nil, nil
	}
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	var obs clusters.Observations
	var outliers []string
	for _, t := range tracks {
		coords, ok := extractFeatures(t.Features)
		if !ok {
			outliers = append(outliers, t.ID)
			continue
		}
		obs = append(obs, trackObservation{id: t.ID, coords: coords, record: t.Features})
	}

	if len(obs) < cfg.NumClusters {
		return nil, append(observationIDs(obs), outliers...)
	}

	result, err := kmeans.New().Partition(obs, cfg.NumClusters)
	if err != nil {
		logging.Warn().Err(err).Int("tracks", len(obs)).Msg("k-means clustering failed")
		return nil, append(observationIDs(obs), outliers...)
	}

	var moods []Mood
	for _, cluster := range result {
		ids := observationIDs(cluster.Observations)
		if len(ids) == 0 || len(ids) < cfg.MinClusterSize {
			outliers = append(outliers, ids...)
			continue
		}

		// kmeans leaves Center at its random seed when no assignment
		// changes, so the centroid is averaged from the members.
		centroid, err := centroidOf(cluster.Observations)
		if err != nil {
			logging.Warn().Err(err).Int("tracks", len(ids)).Msg("computing mood centroid failed")
			outliers = append(outliers, ids...)
			continue
		}

		category := GetMoodCategory(centroid)
		moods = append(moods, Mood{
			Name:        category.Name,
			Description: category.Description,
			TrackIDs:    ids,
			Centroid:    centroid,
		})
	}

	slices.SortFunc(moods, func(a, b Mood) int {
		if c := cmp.Compare(len(b.TrackIDs), len(a.TrackIDs)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return moods, outliers
}

// extractFeatures returns the clustering coordinates of r, or false if r
// lacks any of them.
func extractFeatures(r taste.Record) (clusters.Coordinates, bool) {
	coords := make(clusters.Coordinates, len(moodFeatures))
	for i, f := range moodFeatures {
		v, ok := r[f]
		if !ok {
			return nil, false
		}
		coords[i] = v
	}
	return coords, true
}

// centroidOf averages the clustering features of obs.
func centroidOf(obs clusters.Observations) (taste.Profile, error) {
	records := make([]taste.Record, 0, len(obs))
	for _, o := range obs {
		if to, ok := o.(trackObservation); ok {
			records = append(records, to.record)
		}
	}

	centroid := make(taste.Profile, len(moodFeatures))
	for _, f := range moodFeatures {
		avg, err := taste.Average(records, f)
		if err != nil {
			return nil, err
		}
		centroid[f] = avg
	}
	return centroid, nil
}

func observationIDs(obs clusters.Observations) []string {
	ids := make([]string, 0, len(obs))
	for _, o := range obs {
		if to, ok := o.(trackObservation); ok {
			ids = append(ids, to.id)
		}
	}
	return ids
}
