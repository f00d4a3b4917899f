// Package notify turns editor events into desktop notifications.
package notify

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/segpaint/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave emits a notification when a frame's mask is written.
	EventSave Event = "save"
	// EventSaveAll emits a notification when all pending edits are written.
	EventSaveAll Event = "saveall"
	// EventCopy emits a notification when a view is copied to the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in a stable order.
var Events = []Event{EventSave, EventSaveAll, EventCopy}

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "segpaint",
		Events: map[Event]EventPreference{
			EventSave:    {Template: "Saved mask %s"},
			EventSaveAll: {Template: "Saved %s masks"},
			EventCopy:    {Template: "Copied %s to clipboard"},
		},
	}
}

func envKey(event Event, suffix string) string {
	return "SEGPAINT_NOTIFY_" + strings.ToUpper(string(event)) + suffix
}

// LoadPreferences reads configuration from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("SEGPAINT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, event := range Events {
		if v := strings.TrimSpace(os.Getenv(envKey(event, "_TEXT"))); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	return prefs
}

// EnabledFromEnv reports whether SEGPAINT_NOTIFY_<EVENT> is set to a
// boolean, and its value.
func EnabledFromEnv(event Event) (enabled, ok bool) {
	v := strings.TrimSpace(os.Getenv(envKey(event, "")))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", envKey(event, ""), v, err)
		return false, false
	}
	return b, true
}

// send is replaced in tests.
var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Save sends a save notification naming the written mask file. The mask
// doubles as the notification icon when it exists.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// SaveAll sends one notification for a batch save.
func (n *Notifier) SaveAll(count int) {
	n.dispatch(EventSaveAll, strconv.Itoa(count), platform.Options{})
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "view"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}
