package tags

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists common artwork filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"poster.jpg", "poster.png",
	"front.jpg", "front.png", "front.jpeg",
}

// FindCoverArt looks for artwork next to the media file: first a file
// named after it (movie.jpg for movie.mkv), then the common names.
// Returns the path, or empty string if none is found.
func FindCoverArt(mediaPath string) string {
	dir := filepath.Dir(mediaPath)
	stem := titleFromPath(mediaPath)

	candidates := []string{stem + ".jpg", stem + ".png", stem + "-poster.jpg"}
	candidates = append(candidates, coverNames...)
	for _, name := range candidates {
		for _, variant := range []string{name, strings.ToUpper(name)} {
			path := filepath.Join(dir, variant)
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				return path
			}
		}
	}
	return ""
}
