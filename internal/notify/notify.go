// Package notify sends desktop notifications about playback over the
// freedesktop notification service.
package notify

import "strings"

const (
	appName = "Playbin"
	appID   = "playbin"
)

type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification. Icon is a themed icon name or
// an absolute image path.
type Notification struct {
	Title      string
	Body       string
	Icon       string
	Category   string
	Timeout    int32 // ms; -1 lets the server decide, 0 never expires
	ReplacesID uint32
	Urgency    Urgency
	Transient  bool
}

type Notifier interface {
	// Notify shows n and returns its id, or 0 when notifications are
	// unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeMarkup protects file names containing markup characters on
// servers that render body markup.
func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
