package appstate

import (
	"fmt"

	"github.com/example/segpaint/internal/clipboard"
)

// writeClipboard is swapped out by tests.
var writeClipboard = clipboard.WriteImage

// CopyView renders the current frame and places it on the clipboard.
func (a *AppState) CopyView() error {
	view, err := a.Render()
	if err != nil {
		return err
	}
	if err := writeClipboard(view.RGBA()); err != nil {
		return fmt.Errorf("copy view: %w", err)
	}
	if a.notifier != nil {
		st := a.Status()
		a.notifier.Copy(fmt.Sprintf("%s (%s)", st.FrameName, st.Mode))
	}
	return nil
}
