package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/taste"
)

// Recommend asks Spotify for tracks matching q and returns their IDs.
func (c *Client) Recommend(ctx context.Context, q taste.Query) ([]string, error) {
	seeds := spotify.Seeds{
		Tracks:  toIDs(q.Seeds.TrackIDs),
		Artists: toIDs(q.Seeds.ArtistIDs),
		Genres:  q.Seeds.Genres,
	}

	recs, err := call(c, "recommendations", func() (*spotify.Recommendations, error) {
		return c.api.GetRecommendations(ctx, seeds, trackAttributes(q), spotify.Limit(q.Limit))
	})
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}

	ids := make([]string, len(recs.Tracks))
	for i, t := range recs.Tracks {
		ids[i] = t.ID.String()
	}
	return ids, nil
}

// trackAttributes translates query thresholds into Spotify's tunable
// track attributes.
func trackAttributes(q taste.Query) *spotify.TrackAttributes {
	attrs := spotify.NewTrackAttributes().MinPopularity(q.MinPopularity)

	for _, th := range q.Thresholds {
		switch {
		case th.Feature == taste.Danceability && th.Bound == taste.Min:
			attrs = attrs.MinDanceability(th.Value)
		case th.Feature == taste.Danceability:
			attrs = attrs.MaxDanceability(th.Value)
		case th.Feature == taste.Energy && th.Bound == taste.Min:
			attrs = attrs.MinEnergy(th.Value)
		case th.Feature == taste.Energy:
			attrs = attrs.MaxEnergy(th.Value)
		case th.Feature == taste.Valence && th.Bound == taste.Min:
			attrs = attrs.MinValence(th.Value)
		case th.Feature == taste.Valence:
			attrs = attrs.MaxValence(th.Value)
		case th.Feature == taste.Instrumentalness && th.Bound == taste.Min:
			attrs = attrs.MinInstrumentalness(th.Value)
		case th.Feature == taste.Instrumentalness:
			attrs = attrs.MaxInstrumentalness(th.Value)
		case th.Feature == taste.Acousticness && th.Bound == taste.Min:
			attrs = attrs.MinAcousticness(th.Value)
		case th.Feature == taste.Acousticness:
			attrs = attrs.MaxAcousticness(th.Value)
		case th.Feature == taste.Liveness && th.Bound == taste.Min:
			attrs = attrs.MinLiveness(th.Value)
		case th.Feature == taste.Liveness:
			attrs = attrs.MaxLiveness(th.Value)
		}
	}
	return attrs
}
