package framecache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotModified is returned by Commit and Discard on a clean frame.
	ErrNotModified = errors.New("frame not modified")
	// ErrFrameRange is returned for an index outside the dataset.
	ErrFrameRange = errors.New("frame index out of range")
)

// PersistenceError reports a failed mask write. The frame keeps its pending
// edit.
type PersistenceError struct {
	Frame int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save frame %d: %v", e.Frame, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
