// Package mpris exposes a playbin session over the MPRIS D-Bus interface.
package mpris

import (
	"context"
	"time"

	"github.com/llehouerou/playbin/internal/playbin"
	"github.com/llehouerou/playbin/internal/tags"
)

// Player is the part of a playbin session the adapter drives. D-Bus calls
// arrive on their own goroutines, so the player must serialize operations
// with any other controller of the session.
type Player interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	TogglePause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	State() playbin.State
	Source() string
}

var _ Player = (*playbin.Exclusive)(nil)

// callTimeout bounds each blocking call made on behalf of a D-Bus client.
const callTimeout = 5 * time.Second

// Media describes what is currently loaded.
type Media struct {
	Path  string
	Info  *tags.Info
	Cover string
}

// MediaFor reads the metadata of a local file. Unreadable files still
// get a title.
func MediaFor(path string) *Media {
	info, err := tags.Read(path)
	if err != nil {
		info = &tags.Info{Path: path}
	}
	return &Media{Path: path, Info: info, Cover: tags.FindCoverArt(path)}
}
