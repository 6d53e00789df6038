package tags

import (
	"os"
	"path/filepath"
)

// FindSubtitleFile returns a subtitle file sharing the media file's name
// (movie.srt, then movie.en.srt style names), or empty string.
func FindSubtitleFile(mediaPath string) string {
	dir := filepath.Dir(mediaPath)
	stem := titleFromPath(mediaPath)

	for _, ext := range subtitleExtensions {
		path := filepath.Join(dir, stem+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}

	matches, _ := filepath.Glob(filepath.Join(globEscape(dir), globEscape(stem)+".*"))
	for _, m := range matches {
		if IsSubtitleFile(m) {
			return m
		}
	}
	return ""
}

func globEscape(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
