package taste

import (
	"errors"
	"reflect"
	"testing"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		feature Feature
		want    float64
		wantErr error
	}{
		{
			name:    "single record returns its value",
			records: []Record{{Energy: 0.42}},
			feature: Energy,
			want:    0.42,
		},
		{
			name:    "two records",
			records: []Record{{Danceability: 0.2}, {Danceability: 0.8}},
			feature: Danceability,
			want:    0.5,
		},
		{
			name: "ignores other features",
			records: []Record{
				{Valence: 0.1, Energy: 0.9},
				{Valence: 0.3, Energy: 0.1},
				{Valence: 0.5, Energy: 0.5},
			},
			feature: Valence,
			want:    0.3,
		},
		{
			name:    "empty records",
			records: []Record{},
			feature: Energy,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "nil records",
			records: nil,
			feature: Energy,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing feature",
			records: []Record{{Energy: 0.5}, {Valence: 0.5}},
			feature: Energy,
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Average(tt.records, tt.feature)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Average() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Average() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildProfile(t *testing.T) {
	records := []Record{
		{Danceability: 0.2, Energy: 0.4, Valence: 0.6, Instrumentalness: 0.0, Acousticness: 0.3, Liveness: 0.1},
		{Danceability: 0.4, Energy: 0.8, Valence: 0.2, Instrumentalness: 0.2, Acousticness: 0.5, Liveness: 0.3},
	}

	profile, err := BuildProfile(records)
	if err != nil {
		t.Fatalf("BuildProfile() error = %v", err)
	}

	want := map[Feature]float64{
		Danceability:     0.3,
		Energy:           0.6,
		Valence:          0.4,
		Instrumentalness: 0.1,
		Acousticness:     0.4,
		Liveness:         0.2,
	}
	if len(profile) != len(want) {
		t.Fatalf("BuildProfile() has %d features, want %d", len(profile), len(want))
	}
	for f, w := range want {
		if diff := profile[f] - w; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("profile[%s] = %v, want %v", f, profile[f], w)
		}
	}
}

func TestBuildProfile_Empty(t *testing.T) {
	profile, err := BuildProfile(nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("BuildProfile(nil) error = %v, want ErrInvalidInput", err)
	}
	if profile != nil {
		t.Errorf("BuildProfile(nil) = %v, want nil", profile)
	}
}

func TestTopGenres(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		k      int
		want   []string
	}{
		{
			name:   "ranks by frequency",
			genres: []string{"rock", "pop", "rock", "jazz", "pop", "rock"},
			k:      2,
			want:   []string{"rock", "pop"},
		},
		{
			name:   "empty input",
			genres: []string{},
			k:      3,
			want:   []string{},
		},
		{
			name:   "nil input",
			genres: nil,
			k:      3,
			want:   []string{},
		},
		{
			name:   "zero k",
			genres: []string{"rock"},
			k:      0,
			want:   []string{},
		},
		{
			name:   "negative k",
			genres: []string{"rock"},
			k:      -1,
			want:   []string{},
		},
		{
			name:   "k larger than distinct genres",
			genres: []string{"rock", "pop", "rock", "jazz", "pop", "rock"},
			k:      10,
			want:   []string{"rock", "pop", "jazz"},
		},
		{
			name:   "ties broken lexicographically",
			genres: []string{"techno", "ambient", "house", "ambient", "techno", "house"},
			k:      3,
			want:   []string{"ambient", "house", "techno"},
		},
		{
			name:   "tie at cutoff",
			genres: []string{"rock", "rock", "metal", "indie"},
			k:      2,
			want:   []string{"rock", "indie"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopGenres(tt.genres, tt.k)
			if got == nil {
				t.Fatal("TopGenres() returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopGenres() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPureFunctionsAreIdempotent(t *testing.T) {
	records := []Record{
		{Danceability: 0.1, Energy: 0.2, Valence: 0.3, Instrumentalness: 0.4, Acousticness: 0.5, Liveness: 0.6},
		{Danceability: 0.6, Energy: 0.5, Valence: 0.4, Instrumentalness: 0.3, Acousticness: 0.2, Liveness: 0.1},
	}
	genres := []string{"b", "a", "c", "a", "b", "d"}

	avg1, _ := Average(records, Energy)
	avg2, _ := Average(records, Energy)
	if avg1 != avg2 {
		t.Errorf("Average() not idempotent: %v != %v", avg1, avg2)
	}

	if g1, g2 := TopGenres(genres, 3), TopGenres(genres, 3); !reflect.DeepEqual(g1, g2) {
		t.Errorf("TopGenres() not idempotent: %v != %v", g1, g2)
	}

	profile, err := BuildProfile(records)
	if err != nil {
		t.Fatalf("BuildProfile() error = %v", err)
	}
	seeds := Seeds{TrackIDs: []string{"t1", "t2"}}
	q1, err := BuildQuery(profile, seeds, 40, 15)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	q2, _ := BuildQuery(profile, seeds, 40, 15)
	if !reflect.DeepEqual(q1, q2) {
		t.Errorf("BuildQuery() not idempotent: %+v != %+v", q1, q2)
	}
}
