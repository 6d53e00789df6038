package notify

import "github.com/llehouerou/playbin/internal/errmsg"

const defaultTimeout = 5000

// NowPlaying announces a newly started source.
func NowPlaying(title, subtitle, icon string) Notification {
	return Notification{
		Title:     title,
		Body:      subtitle,
		Icon:      icon,
		Timeout:   defaultTimeout,
		Urgency:   UrgencyLow,
		Transient: true,
	}
}

// EndOfStream announces that a source played to the end.
func EndOfStream(title string) Notification {
	return Notification{
		Title:     "Finished",
		Body:      title,
		Icon:      "media-playback-stop",
		Timeout:   defaultTimeout,
		Urgency:   UrgencyLow,
		Transient: true,
	}
}

// PlaybackError reports an error no pending operation was waiting for,
// such as a decoder failing mid-stream.
func PlaybackError(err error) Notification {
	return Notification{
		Title:    "Playback error",
		Body:     errmsg.Describe(err),
		Icon:     "dialog-error",
		Category: "device.error",
		Timeout:  -1,
		Urgency:  UrgencyCritical,
	}
}
