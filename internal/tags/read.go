package tags

import (
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Read returns the metadata of the media file at path. Containers neither
// tag reader understands still get a title derived from the file name.
func Read(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	info, err := readWithTag(path)
	if err != nil {
		// dhowden/tag only knows MP3, MP4, FLAC and Ogg
		info, err = readWithTaglib(path)
	}
	if err != nil {
		info = &Info{}
	}

	info.Path = path
	info.Size = st.Size()
	info.Title = strings.TrimSpace(info.Title)
	info.Artist = strings.TrimSpace(info.Artist)
	if info.Title == "" {
		info.Title = titleFromPath(path)
	}
	return info, nil
}

func readWithTag(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}
	return &Info{
		Title:  m.Title(),
		Artist: artist,
		Album:  m.Album(),
		Year:   m.Year(),
	}, nil
}

func readWithTaglib(path string) (*Info, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	t := taglibTags(raw)

	year := 0
	if date := t.get(taglib.Date); len(date) >= 4 {
		year, _ = strconv.Atoi(date[:4])
	}
	return &Info{
		Title:  t.get(taglib.Title),
		Artist: t.get(taglib.Artist, taglib.AlbumArtist),
		Album:  t.get(taglib.Album),
		Year:   year,
	}, nil
}
