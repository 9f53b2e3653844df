package catalog

import (
	"fmt"

	"github.com/five82/folio/internal/gallery"
)

// DefaultCategories is served when the remote category list is unavailable.
var DefaultCategories = []string{"anime", "music", "city"}

type seed struct {
	id, title, slug, description string
}

var fallbackSeeds = map[string][]seed{
	"anime": {
		{"1", "Anime Scene 1", "anime1", "Beautiful anime landscape"},
		{"2", "Anime Scene 2", "anime2", "Anime character art"},
		{"3", "Anime Scene 3", "anime3", "Anime city view"},
		{"4", "Anime Scene 4", "anime4", "Anime sunset"},
		{"5", "Anime Scene 5", "anime5", "Anime nature"},
		{"6", "Anime Scene 6", "anime6", "Anime ocean"},
		{"7", "Anime Scene 7", "anime7", "Anime forest"},
		{"8", "Anime Scene 8", "anime8", "Anime mountain"},
		{"9", "Anime Scene 9", "anime9", "Anime sky"},
	},
	"music": {
		{"10", "Music 1", "music1", "Music notes"},
		{"11", "Music 2", "music2", "Guitar closeup"},
		{"12", "Music 3", "music3", "Piano keys"},
		{"13", "Music 4", "music4", "Drum set"},
		{"15", "Music 5", "music5", "Vinyl record"},
		{"16", "Music 6", "music6", "Studio setup"},
		{"17", "Music 7", "music7", "Concert stage"},
		{"18", "Music 8", "music8", "Microphone"},
		{"19", "Music 9", "music9", "Sound waves"},
	},
	"city": {
		{"20", "City 1", "city1", "City skyline"},
		{"21", "City 2", "city2", "Night city"},
		{"22", "City 3", "city3", "Urban street"},
		{"23", "City 4", "city4", "City lights"},
		{"24", "City 5", "city5", "Modern architecture"},
		{"25", "City 6", "city6", "City park"},
		{"26", "City 7", "city7", "City bridge"},
		{"27", "City 8", "city8", "City traffic"},
		{"28", "City 9", "city9", "City skyline at sunset"},
	},
}

// DefaultFallback returns a fresh copy of the built-in fallback dataset.
func DefaultFallback() map[string][]gallery.Image {
	out := make(map[string][]gallery.Image, len(fallbackSeeds))
	for category, seeds := range fallbackSeeds {
		images := make([]gallery.Image, 0, len(seeds))
		for _, s := range seeds {
			images = append(images, gallery.Image{
				ID:          s.id,
				Title:       s.title,
				URL:         fmt.Sprintf("https://picsum.photos/seed/%s/400/300", s.slug),
				Description: s.description,
				Category:    category,
			})
		}
		out[category] = images
	}
	return out
}
