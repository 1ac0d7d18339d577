// Package clustering groups tracks into moods by k-means over their audio
// features.
package clustering

import "github.com/baristaner/spotify-song-recommendation/internal/taste"

// Track is a track ID with its audio features.
type Track struct {
	ID       string
	Features taste.Record
}
