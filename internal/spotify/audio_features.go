package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// AudioFeatures retrieves audio features for the given tracks, in input
// order. Batches requests to max 100 tracks per request per Spotify API
// limits. Tracks without available audio features are omitted.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) ([]recommend.TrackFeatures, error) {
	out := make([]recommend.TrackFeatures, 0, len(trackIDs))

	for i := 0; i < len(trackIDs); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(trackIDs))
		batch := toIDs(trackIDs[i:end])

		features, err := call(c, "audio_features", func() ([]*spotify.AudioFeatures, error) {
			return c.api.GetAudioFeatures(ctx, batch...)
		})
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			out = append(out, recommend.TrackFeatures{
				TrackID:  f.ID.String(),
				Features: toRecord(f),
			})
		}
	}

	return out, nil
}

// toRecord copies the profile features of f.
func toRecord(f *spotify.AudioFeatures) taste.Record {
	return taste.Record{
		taste.Danceability:     float64(f.Danceability),
		taste.Energy:           float64(f.Energy),
		taste.Valence:          float64(f.Valence),
		taste.Instrumentalness: float64(f.Instrumentalness),
		taste.Acousticness:     float64(f.Acousticness),
		taste.Liveness:         float64(f.Liveness),
	}
}
