// Package tags reads the metadata the player shows for a media file.
package tags

import (
	"path/filepath"
	"slices"
	"strings"
)

// Media file extensions offered by the file chooser.
var mediaExtensions = []string{
	// video
	".mkv", ".mp4", ".m4v", ".webm", ".avi", ".mov", ".ogv", ".ts", ".mpg", ".mpeg", ".wmv",
	// audio
	".mp3", ".flac", ".ogg", ".oga", ".opus", ".m4a", ".wav", ".aac",
}

// Subtitle file extensions accepted as external subtitles.
var subtitleExtensions = []string{".srt", ".ass", ".ssa", ".vtt", ".sub"}

// Info is the metadata shown for the current source.
type Info struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Year   int
	Size   int64
}

// DisplayTitle returns "Artist - Title", or just the title.
func (i *Info) DisplayTitle() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Artist + " - " + i.Title
}

// MediaExtensions returns the extensions the file chooser accepts.
func MediaExtensions() []string {
	return slices.Clone(mediaExtensions)
}

// IsMediaFile reports whether path has a media extension.
func IsMediaFile(path string) bool {
	return slices.Contains(mediaExtensions, strings.ToLower(filepath.Ext(path)))
}

// IsSubtitleFile reports whether path has a subtitle extension.
func IsSubtitleFile(path string) bool {
	return slices.Contains(subtitleExtensions, strings.ToLower(filepath.Ext(path)))
}

// titleFromPath derives a title from the file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// taglibTags wraps the raw TagLib map.
type taglibTags map[string][]string

// get returns the first value of the first key present.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
