//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/playbin/internal/playbin"
)

// Adapter connects a playbin session to MPRIS over D-Bus.
type Adapter struct {
	player *playerAdapter
	server *server.Server
	events *events.EventHandler
}

// New creates and starts a new MPRIS adapter.
func New(player Player) (*Adapter, error) {
	pa := &playerAdapter{player: player}
	a := &Adapter{
		player: pa,
		server: server.NewServer("playbin", &rootAdapter{}, pa),
	}
	a.events = events.NewEventHandler(a.server)
	pa.seeked = func(pos time.Duration) {
		_ = a.events.Player.OnSeek(types.Microseconds(pos / time.Microsecond))
	}

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// SetMedia updates the metadata reported for the loaded source.
func (a *Adapter) SetMedia(m *Media) {
	a.player.setMedia(m)
	_ = a.events.Player.OnTitle()
}

// Follow signals playback status changes to MPRIS clients until sub is
// closed.
func (a *Adapter) Follow(sub *playbin.Subscription) {
	go func() {
		for {
			select {
			case <-sub.StateChanged:
				_ = a.events.Player.OnPlayPause()
			case <-sub.EndOfStream:
				_ = a.events.Player.OnPlayPause()
			case <-sub.Done:
				return
			}
		}
	}()
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Playbin", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "video/x-matroska", "video/webm", "audio/mpeg", "audio/flac", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	player Player

	// seeked, if set, is told the target of every completed seek
	seeked func(time.Duration)

	mu    sync.RWMutex
	media *Media
}

func (p *playerAdapter) setMedia(m *Media) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.media = m
}

func (p *playerAdapter) call(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return fn(ctx)
}

func (p *playerAdapter) Next() error {
	return nil
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	if !p.player.State().CanPause() {
		return nil
	}
	return p.call(p.player.Pause)
}

func (p *playerAdapter) PlayPause() error {
	if p.player.Source() == "" {
		return nil
	}
	return p.call(p.player.TogglePause)
}

func (p *playerAdapter) Stop() error {
	return p.call(p.player.Stop)
}

func (p *playerAdapter) Play() error {
	if p.player.Source() == "" {
		return nil
	}
	return p.call(p.player.Play)
}

// Seek moves relative to the current position, clamped to the source.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos, err := p.player.Position()
	if err != nil {
		return err
	}
	target := max(0, pos+time.Duration(offset)*time.Microsecond)
	if dur, err := p.player.Duration(); err == nil {
		target = min(dur, target)
	}
	return p.seek(target)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	target := time.Duration(position) * time.Microsecond
	if dur, err := p.player.Duration(); err == nil && target > dur {
		return nil
	}
	return p.seek(target)
}

func (p *playerAdapter) seek(target time.Duration) error {
	err := p.call(func(ctx context.Context) error {
		return p.player.Seek(ctx, target)
	})
	if err == nil && p.seeked != nil {
		p.seeked(target)
	}
	return err
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.player.State() {
	case playbin.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playbin.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playbin.StateIdle:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	source := p.player.Source()
	if source == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(source)),
		Url:     source,
	}
	if dur, err := p.player.Duration(); err == nil {
		meta.Length = types.Microseconds(dur.Microseconds())
	}

	p.mu.RLock()
	m := p.media
	p.mu.RUnlock()
	if m == nil {
		return meta, nil
	}

	meta.Title = m.Info.Title
	if m.Info.Artist != "" {
		meta.Artist = []string{m.Info.Artist}
	}
	meta.Album = m.Info.Album
	if m.Cover != "" {
		meta.ArtUrl = "file://" + m.Cover
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	pos, err := p.player.Position()
	if err != nil {
		return 0, nil //nolint:nilerr // nothing loaded reads as zero
	}
	return pos.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.player.Source() != "", nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.player.State().IsActive(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(source string) string {
	h := fnv.New64a()
	h.Write([]byte(source))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
