package playbin

// StreamTrack identifies a selectable audio or subtitle stream.
// Language is empty when the stream carries no language tag.
type StreamTrack struct {
	Index    int
	Language string
}

// Label returns the language, or "Unknown" for untagged streams.
func (t StreamTrack) Label() string {
	if t.Language == "" {
		return "Unknown"
	}
	return t.Language
}

func findTrack(tracks []StreamTrack, index int) StreamTrack {
	for _, t := range tracks {
		if t.Index == index {
			return t
		}
	}
	return StreamTrack{Index: index}
}
