package app

import (
	"context"
	"time"

	"github.com/llehouerou/playbin/internal/mpris"
	"github.com/llehouerou/playbin/internal/playbin"
)

// Player is the session as the terminal player drives it.
type Player interface {
	PlaySource(ctx context.Context, source string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error
	Rewind(ctx context.Context, d time.Duration) error
	Forward(ctx context.Context, d time.Duration) error

	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	State() playbin.State
	Source() string

	SubtitleTracks() []playbin.StreamTrack
	AudioTracks() []playbin.StreamTrack
	Subtitle() (*playbin.StreamTrack, error)
	AudioTrack() (*playbin.StreamTrack, error)
	SetSubtitle(track *playbin.StreamTrack) error
	SetAudioTrack(track *playbin.StreamTrack) error
	SetSubtitleFile(path string) error

	Subscribe() *playbin.Subscription
}

var (
	_ Player = (*playbin.Session)(nil)
	_ Player = (*playbin.Exclusive)(nil)
)

// MediaPublisher is told what is loaded; the MPRIS adapter implements it.
type MediaPublisher interface {
	SetMedia(m *mpris.Media)
}

var _ MediaPublisher = (*mpris.Adapter)(nil)
