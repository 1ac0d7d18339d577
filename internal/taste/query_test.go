package taste

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func fullProfile() Profile {
	return Profile{
		Danceability:     0.7,
		Energy:           0.6,
		Valence:          0.5,
		Instrumentalness: 0.05,
		Acousticness:     0.3,
		Liveness:         0.15,
	}
}

func TestBuildQuery_Directions(t *testing.T) {
	q, err := BuildQuery(fullProfile(), Seeds{TrackIDs: []string{"a"}}, 40, 15)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	tests := []struct {
		feature Feature
		bound   Bound
		value   float64
	}{
		{Danceability, Min, 0.7},
		{Energy, Min, 0.6},
		{Valence, Min, 0.5},
		{Instrumentalness, Min, 0.05},
		{Acousticness, Max, 0.3},
		{Liveness, Max, 0.15},
	}

	for _, tt := range tests {
		t.Run(string(tt.feature), func(t *testing.T) {
			th, ok := q.Threshold(tt.feature)
			if !ok {
				t.Fatalf("no threshold for %s", tt.feature)
			}
			if th.Bound != tt.bound {
				t.Errorf("%s bound = %v, want %v", tt.feature, th.Bound, tt.bound)
			}
			if th.Value != tt.value {
				t.Errorf("%s value = %v, want %v", tt.feature, th.Value, tt.value)
			}
		})
	}

	if len(q.Thresholds) != len(Features) {
		t.Errorf("got %d thresholds, want %d", len(q.Thresholds), len(Features))
	}
}

func TestBuildQuery_CopiesThrough(t *testing.T) {
	seeds := Seeds{
		ArtistIDs: []string{"artist1", "artist2"},
		Genres:    []string{"rock", "pop"},
	}

	q, err := BuildQuery(fullProfile(), seeds, 20, 15)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	if q.MinPopularity != 20 {
		t.Errorf("MinPopularity = %d, want 20", q.MinPopularity)
	}
	if q.Limit != 15 {
		t.Errorf("Limit = %d, want 15", q.Limit)
	}
	if len(q.Seeds.ArtistIDs) != 2 || len(q.Seeds.Genres) != 2 {
		t.Errorf("Seeds = %+v, want 2 artists and 2 genres", q.Seeds)
	}
	if len(q.Seeds.TrackIDs) != 0 {
		t.Errorf("Seeds.TrackIDs = %v, want empty", q.Seeds.TrackIDs)
	}

	// Mutating the caller's slices must not leak into the query.
	seeds.Genres[0] = "jazz"
	if q.Seeds.Genres[0] != "rock" {
		t.Errorf("query seeds changed after caller mutation: %v", q.Seeds.Genres)
	}
}

func TestBuildQuery_IncompleteProfile(t *testing.T) {
	profile := fullProfile()
	delete(profile, Liveness)

	_, err := BuildQuery(profile, Seeds{}, 40, 15)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("BuildQuery() error = %v, want ErrInvalidInput", err)
	}
}

func TestBuildQuery_AcousticnessNeverMinimum(t *testing.T) {
	profile := fullProfile()
	profile[Acousticness] = 0.3

	q, err := BuildQuery(profile, Seeds{}, 0, 1)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	th, _ := q.Threshold(Acousticness)
	if th.Bound != Max || th.Value != 0.3 {
		t.Errorf("acousticness threshold = %+v, want max 0.3", th)
	}
}

func TestThresholdJSON(t *testing.T) {
	b, err := json.Marshal(Threshold{Feature: Liveness, Bound: Max, Value: 0.2})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(b), `"bound":"max"`) {
		t.Errorf("Marshal() = %s, want bound encoded as \"max\"", b)
	}

	var got Threshold
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Bound != Max {
		t.Errorf("Unmarshal() bound = %v, want max", got.Bound)
	}

	if err := json.Unmarshal([]byte(`{"bound":"sideways"}`), &got); err == nil {
		t.Error("Unmarshal() accepted an unknown bound")
	}
}

func TestBoundFor(t *testing.T) {
	for _, f := range []Feature{Danceability, Energy, Valence, Instrumentalness} {
		if BoundFor(f) != Min {
			t.Errorf("BoundFor(%s) = %v, want min", f, BoundFor(f))
		}
	}
	for _, f := range []Feature{Acousticness, Liveness} {
		if BoundFor(f) != Max {
			t.Errorf("BoundFor(%s) = %v, want max", f, BoundFor(f))
		}
	}
}
