// Package platform delivers desktop notifications through the host's
// notification service.
package platform

import "time"

// DefaultAppName identifies the sender when Options.AppName is empty.
const DefaultAppName = "segpaint"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName is the sending application shown by the notification center.
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is how long the notification stays visible. Zero uses the
	// platform default.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
