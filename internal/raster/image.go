package raster

import (
	"fmt"
	"math"
)

// Image is a read-only grid of float samples in [0, 1] with one or three
// interleaved channels.
type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []float64
}

// NewImage allocates a zeroed image. channels must be 1 or 3.
func NewImage(s Shape, channels int) *Image {
	return &Image{Height: s.Height, Width: s.Width, Channels: channels, Pix: make([]float64, s.Len()*channels)}
}

// Shape returns the first two dimensions of the image.
func (im *Image) Shape() Shape { return Shape{Height: im.Height, Width: im.Width} }

// At returns channel c of (row, col).
func (im *Image) At(row, col, c int) float64 {
	return im.Pix[(row*im.Width+col)*im.Channels+c]
}

// Set writes channel c of (row, col).
func (im *Image) Set(row, col, c int, v float64) {
	im.Pix[(row*im.Width+col)*im.Channels+c] = v
}

// Validate checks the channel count, buffer length and sample range.
func (im *Image) Validate() error {
	if im.Channels != 1 && im.Channels != 3 {
		return fmt.Errorf("image has %d channels, want 1 or 3", im.Channels)
	}
	if want := im.Shape().Len() * im.Channels; len(im.Pix) != want {
		return fmt.Errorf("image buffer has %d samples, want %d", len(im.Pix), want)
	}
	for i, v := range im.Pix {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("image sample %d out of range: %v", i, v)
		}
	}
	return nil
}

// ValidateMask checks that m is a well formed label grid matching shape.
func ValidateMask(m *Mask, shape Shape) error {
	if len(m.Pix) != m.Shape().Len() {
		return fmt.Errorf("mask buffer has %d labels, want %d", len(m.Pix), m.Shape().Len())
	}
	return CheckShape(m.Shape(), shape)
}
