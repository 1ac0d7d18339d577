package clustering

import "github.com/baristaner/spotify-song-recommendation/internal/taste"

// generateMoodName creates a descriptive name based on audio feature centroid values.
// Uses a 2x2 energy/valence quadrant system with acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness above 0.6 appends "(Acoustic)".
func generateMoodName(centroid taste.Profile) string {
	var name string
	switch quadrantOf(centroid) {
	case upbeat:
		name = "Upbeat Party"
	case intense:
		name = "Intense & Dark"
	case chill:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid[taste.Acousticness] > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}

type quadrant int

const (
	upbeat quadrant = iota
	intense
	chill
	reflective
)

func quadrantOf(centroid taste.Profile) quadrant {
	highEnergy := centroid[taste.Energy] > 0.6
	highValence := centroid[taste.Valence] > 0.5

	switch {
	case highEnergy && highValence:
		return upbeat
	case highEnergy:
		return intense
	case highValence:
		return chill
	default:
		return reflective
	}
}

// MoodCategory is a named mood classification.
type MoodCategory struct {
	Name        string
	Energy      float64
	Valence     float64
	Description string
}

var descriptions = map[quadrant]string{
	upbeat:     "High-energy, positive vibes - perfect for dancing and celebrations",
	intense:    "Intense, driving energy with darker emotional tones",
	chill:      "Relaxed and uplifting - great for unwinding",
	reflective: "Contemplative and introspective - ideal for quiet moments",
}

// GetMoodCategory returns the mood category for a centroid.
func GetMoodCategory(centroid taste.Profile) MoodCategory {
	return MoodCategory{
		Name:        generateMoodName(centroid),
		Energy:      centroid[taste.Energy],
		Valence:     centroid[taste.Valence],
		Description: descriptions[quadrantOf(centroid)],
	}
}
