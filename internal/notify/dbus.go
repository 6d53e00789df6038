//go:build linux

package notify

import (
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod       = notificationsDest + ".Notify"
	closeMethod        = notificationsDest + ".CloseNotification"
	capabilitiesMethod = notificationsDest + ".GetCapabilities"
)

type dbusNotifier struct {
	obj         dbus.BusObject
	bodyMarkup  bool
	persistence bool
}

// New connects to the session bus. Without one it returns a notifier that
// drops everything, so callers never need a nil check.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return &stubNotifier{}, nil //nolint:nilerr // no session bus, notifications are optional
	}

	n := &dbusNotifier{obj: conn.Object(notificationsDest, notificationsPath)}
	var caps []string
	if err := n.obj.Call(capabilitiesMethod, 0).Store(&caps); err == nil {
		for _, c := range caps {
			switch c {
			case "body-markup":
				n.bodyMarkup = true
			case "persistence":
				n.persistence = true
			}
		}
	}
	return n, nil
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	body := notif.Body
	if n.bodyMarkup {
		body = escapeMarkup(body)
	}

	var id uint32
	err := n.obj.Call(notifyMethod, 0,
		appName,
		notif.ReplacesID,
		iconName(notif.Icon),
		notif.Title,
		body,
		[]string{},
		hints(notif, n.persistence),
		notif.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	if id == 0 {
		return nil
	}
	return n.obj.Call(closeMethod, 0, id).Err
}

// hints builds the notification hints. Transient only matters to servers
// that keep a history.
func hints(notif Notification, persistence bool) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(appID),
	}
	if notif.Category != "" {
		h["category"] = dbus.MakeVariant(notif.Category)
	}
	if notif.Transient && persistence {
		h["transient"] = dbus.MakeVariant(true)
	}
	if filepath.IsAbs(notif.Icon) {
		h["image-path"] = dbus.MakeVariant(notif.Icon)
	}
	return h
}

// iconName keeps themed icon names in app_icon; image files go in the
// image-path hint instead.
func iconName(icon string) string {
	if filepath.IsAbs(icon) {
		return ""
	}
	return icon
}

type stubNotifier struct{}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) { return 0, nil }
func (s *stubNotifier) Close(_ uint32) error                  { return nil }
