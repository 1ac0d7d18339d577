package taste

import "fmt"

// Bound is the direction of a feature threshold.
type Bound int

const (
	// Min asks for tracks with at least the threshold value.
	Min Bound = iota
	// Max asks for tracks with at most the threshold value.
	Max
)

func (b Bound) String() string {
	if b == Max {
		return "max"
	}
	return "min"
}

// MarshalText encodes the bound as "min" or "max".
func (b Bound) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes "min" or "max".
func (b *Bound) UnmarshalText(text []byte) error {
	switch string(text) {
	case "min":
		*b = Min
	case "max":
		*b = Max
	default:
		return fmt.Errorf("unknown bound %q", text)
	}
	return nil
}

// bounds fixes the direction used for each profile feature.
var bounds = map[Feature]Bound{
	Danceability:     Min,
	Energy:           Min,
	Valence:          Min,
	Instrumentalness: Min,
	Acousticness:     Max,
	Liveness:         Max,
}

// BoundFor returns the threshold direction applied to f.
func BoundFor(f Feature) Bound {
	return bounds[f]
}

// Threshold constrains one audio feature of recommended tracks.
type Threshold struct {
	Feature Feature `json:"feature"`
	Bound   Bound   `json:"bound"`
	Value   float64 `json:"value"`
}

// Seeds anchors a recommendation request. Either TrackIDs, or ArtistIDs
// together with Genres, is expected to be set.
type Seeds struct {
	TrackIDs  []string `json:"track_ids,omitempty"`
	ArtistIDs []string `json:"artist_ids,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}

// Query is the parameter set handed to a recommendation client.
type Query struct {
	Thresholds    []Threshold `json:"thresholds"`
	Seeds         Seeds       `json:"seeds"`
	MinPopularity int         `json:"min_popularity"`
	Limit         int         `json:"limit"`
}

// Threshold returns the threshold for f, if the query has one.
func (q Query) Threshold(f Feature) (Threshold, bool) {
	for _, t := range q.Thresholds {
		if t.Feature == f {
			return t, true
		}
	}
	return Threshold{}, false
}

// BuildQuery maps a profile onto recommendation thresholds.
// Danceability, energy, valence and instrumentalness become minimums;
// acousticness and liveness become maximums. popularityFloor and limit are
// copied through unchanged. Returns ErrInvalidInput if the profile lacks any
// feature in Features.
func BuildQuery(profile Profile, seeds Seeds, popularityFloor, limit int) (Query, error) {
	thresholds := make([]Threshold, 0, len(Features))
	for _, f := range Features {
		v, ok := profile[f]
		if !ok {
			return Query{}, fmt.Errorf("%w: profile has no %s", ErrInvalidInput, f)
		}
		thresholds = append(thresholds, Threshold{
			Feature: f,
			Bound:   BoundFor(f),
			Value:   v,
		})
	}

	return Query{
		Thresholds:    thresholds,
		Seeds:         copySeeds(seeds),
		MinPopularity: popularityFloor,
		Limit:         limit,
	}, nil
}

// copySeeds detaches the query from caller-owned slices.
func copySeeds(s Seeds) Seeds {
	return Seeds{
		TrackIDs:  append([]string(nil), s.TrackIDs...),
		ArtistIDs: append([]string(nil), s.ArtistIDs...),
		Genres:    append([]string(nil), s.Genres...),
	}
}
