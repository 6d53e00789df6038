//go:build !linux

package notify

// Without the freedesktop notification service the player stays silent.
type stubNotifier struct{}

// New returns a notifier that drops playback notifications.
func New() (Notifier, error) {
	return &stubNotifier{}, nil
}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) { return 0, nil }
func (s *stubNotifier) Close(_ uint32) error                  { return nil }
