package playbin

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playbin/internal/gst"
)

// trackKind ties a stream family to the playbin properties that drive it.
type trackKind struct {
	name    string // used in errors
	stream  gst.StreamKind
	flag    gst.PlayFlags
	current string
}

var (
	subtitleKind = trackKind{name: "subtitle", stream: gst.StreamText, flag: gst.PlayFlagText, current: gst.PropCurrentText}
	audioKind    = trackKind{name: "audio", stream: gst.StreamAudio, flag: gst.PlayFlagAudio, current: gst.PropCurrentAudio}
)

// SubtitleTracks returns the subtitle tracks of the current source.
func (s *Session) SubtitleTracks() []StreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.subtitles)
}

// AudioTracks returns the audio tracks of the current source.
func (s *Session) AudioTracks() []StreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.audio)
}

// Subtitle returns the active subtitle track, or nil when subtitles are
// disabled.
func (s *Session) Subtitle() (*StreamTrack, error) {
	return s.selected(subtitleKind, s.SubtitleTracks())
}

// SetSubtitle selects track, or disables subtitles when track is nil.
// Disabling leaves the selected index untouched.
func (s *Session) SetSubtitle(track *StreamTrack) error {
	return s.selectTrack(subtitleKind, track)
}

// AudioTrack returns the active audio track, or nil when audio is disabled.
func (s *Session) AudioTrack() (*StreamTrack, error) {
	return s.selected(audioKind, s.AudioTracks())
}

// SetAudioTrack selects track, or disables audio when track is nil.
func (s *Session) SetAudioTrack(track *StreamTrack) error {
	return s.selectTrack(audioKind, track)
}

// SubtitleFile returns the URI of the external subtitle file, if any.
func (s *Session) SubtitleFile() (string, error) {
	v, err := s.pipe.Property(gst.PropSubURI)
	if err != nil {
		return "", err
	}
	uri, _ := v.(string)
	return uri, nil
}

// SetSubtitleFile sets an external subtitle file, given as a path or URI.
// It applies to the next source started with PlaySource.
func (s *Session) SetSubtitleFile(path string) error {
	uri := ""
	if path != "" {
		var err error
		if uri, err = sourceURI(path); err != nil {
			return err
		}
	}
	if err := s.pipe.SetProperty(gst.PropSubURI, uri); err != nil {
		return fmt.Errorf("set suburi: %w", err)
	}
	return nil
}

func (s *Session) selected(kind trackKind, tracks []StreamTrack) (*StreamTrack, error) {
	flags, err := s.flags()
	if err != nil {
		return nil, err
	}
	if flags&kind.flag == 0 {
		return nil, nil
	}
	v, err := s.pipe.Property(kind.current)
	if err != nil {
		return nil, err
	}
	index, ok := intValue(v)
	if !ok || index < 0 {
		return nil, nil
	}
	t := findTrack(tracks, index)
	return &t, nil
}

func (s *Session) selectTrack(kind trackKind, track *StreamTrack) error {
	if track == nil {
		return s.updateFlags(0, kind.flag)
	}

	n, err := s.count(kind.stream)
	if err != nil {
		return err
	}
	if track.Index < 0 || track.Index >= n {
		return &IndexError{Kind: kind.name, Index: track.Index, Count: n}
	}
	if err := s.updateFlags(kind.flag, 0); err != nil {
		return err
	}
	if err := s.pipe.SetProperty(kind.current, track.Index); err != nil {
		return fmt.Errorf("set %s: %w", kind.current, err)
	}
	return nil
}

// refreshTracks enumerates the tracks of the newly started source.
// Runs on the session goroutine.
func (s *Session) refreshTracks() {
	subtitles := s.enumerate(gst.StreamText)
	audio := s.enumerate(gst.StreamAudio)

	s.mu.Lock()
	s.subtitles = subtitles
	s.audio = audio
	source := s.source
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"source":    source,
		"subtitles": len(subtitles),
		"audio":     len(audio),
	}).Debug("tracks enumerated")

	s.emit(func(sub *Subscription) {
		sub.sendTracks(TracksChange{
			Source:    source,
			Subtitles: slices.Clone(subtitles),
			Audio:     slices.Clone(audio),
		})
	})
}

func (s *Session) enumerate(kind gst.StreamKind) []StreamTrack {
	n, err := s.count(kind)
	if err != nil {
		s.log.WithError(err).WithField("kind", string(kind)).Warn("cannot count tracks")
		return nil
	}
	tracks := make([]StreamTrack, 0, n)
	for i := range n {
		lang, _ := s.pipe.StreamLanguage(kind, i)
		tracks = append(tracks, StreamTrack{Index: i, Language: lang})
	}
	return tracks
}

func (s *Session) count(kind gst.StreamKind) (int, error) {
	v, err := s.pipe.Property(gst.CountProperty(kind))
	if err != nil {
		return 0, err
	}
	n, ok := intValue(v)
	if !ok {
		return 0, fmt.Errorf("%s: unexpected value %T", gst.CountProperty(kind), v)
	}
	return n, nil
}

func (s *Session) flags() (gst.PlayFlags, error) {
	v, err := s.pipe.Property(gst.PropFlags)
	if err != nil {
		return 0, fmt.Errorf("read flags: %w", err)
	}
	n, ok := intValue(v)
	if !ok {
		return 0, fmt.Errorf("flags: unexpected value %T", v)
	}
	return gst.PlayFlags(n), nil
}

// updateFlags sets and clears bits of the playbin flags property.
func (s *Session) updateFlags(set, unset gst.PlayFlags) error {
	s.propMu.Lock()
	defer s.propMu.Unlock()

	flags, err := s.flags()
	if err != nil {
		return err
	}
	flags = (flags | set) &^ unset
	if err := s.pipe.SetProperty(gst.PropFlags, uint32(flags)); err != nil {
		return fmt.Errorf("write flags: %w", err)
	}
	return nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	case uint:
		return int(n), true
	default:
		return 0, false
	}
}
