package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/segpaint/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := send
	send = func(title, body string, opts platform.Options) error {
		got = append(got, sent{title, body, opts})
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Save("x.png")
	n.SaveAll(3)
	n.Copy("frame")
	if len(*got) != 0 {
		t.Fatalf("unexpected notifications: %v", *got)
	}
}

func TestSaveUsesMaskAsIcon(t *testing.T) {
	got := capture(t)
	path := filepath.Join(t.TempDir(), "frame-1.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Save(path)
	if len(*got) != 1 {
		t.Fatalf("unexpected notification count: got %d want 1", len(*got))
	}
	s := (*got)[0]
	if s.title != "segpaint" || s.body != "Saved mask "+path || s.opts.IconPath != path {
		t.Fatalf("unexpected notification: %+v", s)
	}
}

func TestSaveAllAndCopyTemplates(t *testing.T) {
	got := capture(t)
	t.Setenv("SEGPAINT_NOTIFY_TITLE", "Cells")
	t.Setenv("SEGPAINT_NOTIFY_SAVEALL_TEXT", "wrote %s")
	n := New(LoadPreferences())
	n.Enable(EventSaveAll, true)
	n.Enable(EventCopy, true)
	n.SaveAll(4)
	n.Copy("")
	want := []sent{
		{title: "Cells", body: "wrote 4"},
		{title: "Cells", body: "Copied view to clipboard"},
	}
	if len(*got) != len(want) {
		t.Fatalf("unexpected notifications: got %v want %v", *got, want)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Fatalf("notification %d: got %+v want %+v", i, (*got)[i], want[i])
		}
	}
}

func TestEnabledFromEnv(t *testing.T) {
	t.Setenv("SEGPAINT_NOTIFY_SAVE", "true")
	t.Setenv("SEGPAINT_NOTIFY_COPY", "nope")
	if on, ok := EnabledFromEnv(EventSave); !on || !ok {
		t.Fatalf("unexpected save flag: got %v,%v want true,true", on, ok)
	}
	if _, ok := EnabledFromEnv(EventCopy); ok {
		t.Fatal("invalid boolean should be ignored")
	}
	if _, ok := EnabledFromEnv(EventSaveAll); ok {
		t.Fatal("unset variable should be ignored")
	}
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.Enable(EventSave, true)
	n.Save("x")
	n.SaveAll(1)
	n.Copy("x")
}
