package appstate

import (
	"fmt"

	"github.com/example/segpaint/internal/render"
)

// Status is a snapshot for status bars and command output.
type Status struct {
	Dataset         string
	Frame           int
	Frames          int
	FrameName       string
	Tool            Tool
	Class           int
	Classes         int
	Width           int
	Mode            render.Mode
	Gesture         Gesture
	CurrentModified bool
	AnyModified     bool
}

// Status returns the current session state.
func (a *AppState) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	ds := a.cache.Dataset()
	return Status{
		Dataset:         ds.Name(),
		Frame:           a.frame,
		Frames:          ds.Len(),
		FrameName:       ds.FrameName(a.frame),
		Tool:            a.tool,
		Class:           a.class,
		Classes:         a.classes,
		Width:           a.width,
		Mode:            a.mode,
		Gesture:         a.g.state(),
		CurrentModified: a.cache.Modified(a.frame),
		AnyModified:     a.cache.AnyModified(),
	}
}

func (s Status) String() string {
	mod := ""
	if s.CurrentModified {
		mod = " *"
	}
	return fmt.Sprintf("%s [%d/%d]%s  tool:%s class:%d/%d width:%d view:%s",
		s.FrameName, s.Frame+1, s.Frames, mod, s.Tool, s.Class, s.Classes, s.Width, s.Mode)
}
