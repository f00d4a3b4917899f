package framecache

import "github.com/example/segpaint/internal/raster"

// State is the edit state of one frame: Clean or Dirty.
type State interface {
	isState()
}

// Clean means the frame's mask matches what is stored.
type Clean struct{}

// Dirty carries the uncommitted edit for a frame.
type Dirty struct {
	Pending *raster.Mask
}

func (Clean) isState() {}
func (Dirty) isState() {}

type frame struct {
	base  *raster.Mask
	state State
}

// current returns the mask a reader should see.
func (f *frame) current() *raster.Mask {
	switch s := f.state.(type) {
	case Dirty:
		return s.Pending
	case Clean:
		return f.base
	}
	panic("framecache: unknown state")
}

func (f *frame) dirty() bool {
	_, ok := f.state.(Dirty)
	return ok
}
