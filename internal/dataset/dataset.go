// Package dataset supplies frames (an image and its label mask) to the
// editor and persists edited masks.
package dataset

import (
	"errors"
	"fmt"

	"github.com/example/segpaint/internal/raster"
)

// ErrMaskNotFound is returned by Mask when a frame has no stored mask yet.
var ErrMaskNotFound = errors.New("mask not found")

// ErrEmpty is returned when a dataset has no frames.
var ErrEmpty = errors.New("dataset is empty")

// Dataset is an indexed collection of frames.
type Dataset interface {
	// Name identifies the dataset in lists and status lines.
	Name() string
	Len() int
	FrameName(index int) string
	Image(index int) (*raster.Image, error)
	// Mask returns the stored mask or ErrMaskNotFound.
	Mask(index int) (*raster.Mask, error)
	// SaveMask persists m as the mask of frame index. It may block.
	SaveMask(index int, m *raster.Mask) error
}

// Validate checks that ds is usable: it has a name and at least one frame.
func Validate(ds Dataset) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	if ds.Name() == "" {
		return errors.New("dataset has no name")
	}
	if ds.Len() < 1 {
		return fmt.Errorf("%s: %w", ds.Name(), ErrEmpty)
	}
	return nil
}

// ClassInfo is implemented by datasets that declare their classes.
type ClassInfo interface {
	// ClassCount returns the number of foreground classes, or 0 if unknown.
	ClassCount() int
	ClassNames() []string
}

var _ ClassInfo = (*Dir)(nil)
var _ Dataset = (*Dir)(nil)
var _ Dataset = (*Memory)(nil)
