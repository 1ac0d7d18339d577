// Package taste derives a listener's taste profile from track audio features
// and assembles the recommendation query that targets it.
//
// Everything in this package is pure: no I/O, no shared state, safe for
// concurrent use by independent requests.
package taste

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when a profile cannot be computed from the
// given records, e.g. an empty record set or a record missing a feature.
var ErrInvalidInput = errors.New("invalid input")

// Feature names a normalized [0,1] audio feature.
type Feature string

// Recognized audio features.
const (
	Danceability     Feature = "danceability"
	Energy           Feature = "energy"
	Valence          Feature = "valence"
	Instrumentalness Feature = "instrumentalness"
	Acousticness     Feature = "acousticness"
	Liveness         Feature = "liveness"
)

// Features lists the profile features in query order.
var Features = []Feature{
	Danceability,
	Energy,
	Valence,
	Instrumentalness,
	Acousticness,
	Liveness,
}

// Record holds the audio features of exactly one track.
type Record map[Feature]float64

// Profile maps each feature to its mean across a set of records.
type Profile map[Feature]float64

// Average returns the arithmetic mean of feature across records.
// Returns ErrInvalidInput if records is empty or any record lacks feature.
func Average(records []Record, feature Feature) (float64, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: cannot average %s over zero records", ErrInvalidInput, feature)
	}

	var sum float64
	for i, r := range records {
		v, ok := r[feature]
		if !ok {
			return 0, fmt.Errorf("%w: record %d has no %s", ErrInvalidInput, i, feature)
		}
		sum += v
	}

	return sum / float64(len(records)), nil
}

// BuildProfile averages every feature in Features across records.
func BuildProfile(records []Record) (Profile, error) {
	profile := make(Profile, len(Features))
	for _, f := range Features {
		avg, err := Average(records, f)
		if err != nil {
			return nil, err
		}
		profile[f] = avg
	}
	return profile, nil
}

// genreCount pairs a genre with its number of occurrences.
type genreCount struct {
	name  string
	count int
}

// TopGenres returns up to k genres ordered by descending frequency.
// Equal counts are ordered lexicographically by genre name.
// An empty input or k <= 0 yields an empty slice.
func TopGenres(genres []string, k int) []string {
	if len(genres) == 0 || k <= 0 {
		return []string{}
	}

	counts := make(map[string]int)
	for _, g := range genres {
		counts[g]++
	}

	ranked := make([]genreCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, genreCount{name: name, count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})

	n := min(k, len(ranked))
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = ranked[i].name
	}
	return top
}
