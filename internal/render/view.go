// Package render composites frames for display. Every function here is pure:
// inputs are never modified and the output is always a three channel float
// buffer with samples in [0, 1].
package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/example/segpaint/internal/raster"
)

// Mode selects what Render shows.
type Mode int

const (
	ModeOverlay Mode = iota
	ModeImageOnly
	ModeMaskOnly
)

func (m Mode) String() string {
	switch m {
	case ModeOverlay:
		return "overlay"
	case ModeImageOnly:
		return "image"
	case ModeMaskOnly:
		return "mask"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Next cycles overlay, image, mask.
func (m Mode) Next() Mode {
	switch m {
	case ModeOverlay:
		return ModeImageOnly
	case ModeImageOnly:
		return ModeMaskOnly
	default:
		return ModeOverlay
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overlay":
		return ModeOverlay, nil
	case "image", "image-only", "image_only":
		return ModeImageOnly, nil
	case "mask", "mask-only", "mask_only":
		return ModeMaskOnly, nil
	}
	return ModeOverlay, fmt.Errorf("unknown view mode %q", s)
}

// Buffer is a displayable RGB image with interleaved float samples.
type Buffer struct {
	Height int
	Width  int
	Pix    []float64
}

// NewBuffer returns a black buffer.
func NewBuffer(s raster.Shape) *Buffer {
	return &Buffer{Height: s.Height, Width: s.Width, Pix: make([]float64, s.Len()*3)}
}

// Shape returns the buffer dimensions.
func (b *Buffer) Shape() raster.Shape { return raster.Shape{Height: b.Height, Width: b.Width} }

// At returns the color at (row, col).
func (b *Buffer) At(row, col int) RGB {
	i := (row*b.Width + col) * 3
	return RGB{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

func (b *Buffer) set(i int, c RGB) {
	b.Pix[i*3] = c.R
	b.Pix[i*3+1] = c.G
	b.Pix[i*3+2] = c.B
}

var errRange = errors.New("render: sample out of range")

// Check verifies the buffer length and that every sample is in [0, 1].
func (b *Buffer) Check() error {
	if len(b.Pix) != b.Shape().Len()*3 {
		return fmt.Errorf("render: buffer has %d samples, want %d", len(b.Pix), b.Shape().Len()*3)
	}
	if len(b.Pix) == 0 {
		return nil
	}
	if floats.HasNaN(b.Pix) {
		return errRange
	}
	if lo, hi := floats.Min(b.Pix), floats.Max(b.Pix); lo < 0 || hi > 1 {
		return fmt.Errorf("%w: [%v, %v]", errRange, lo, hi)
	}
	return nil
}

// RGBA converts the buffer to an 8-bit image for display or encoding.
func (b *Buffer) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i := 0; i < b.Shape().Len(); i++ {
		out.Pix[i*4] = uint8(math.Round(b.Pix[i*3] * 0xff))
		out.Pix[i*4+1] = uint8(math.Round(b.Pix[i*3+1] * 0xff))
		out.Pix[i*4+2] = uint8(math.Round(b.Pix[i*3+2] * 0xff))
		out.Pix[i*4+3] = 0xff
	}
	return out
}

// Promote returns img as a three channel buffer, replicating a single
// channel.
func Promote(img *raster.Image) *Buffer {
	b := NewBuffer(img.Shape())
	switch img.Channels {
	case 1:
		for i, v := range img.Pix {
			b.Pix[i*3] = v
			b.Pix[i*3+1] = v
			b.Pix[i*3+2] = v
		}
	default:
		copy(b.Pix, img.Pix)
	}
	return b
}

// Colorize paints every foreground label with its class color. Background
// stays black.
func Colorize(m *raster.Mask, table ClassColorTable) *Buffer {
	b := NewBuffer(m.Shape())
	for i, v := range m.Pix {
		if v != 0 {
			b.set(i, table.Color(v))
		}
	}
	return b
}

func binaryMask(m *raster.Mask) *Buffer {
	b := NewBuffer(m.Shape())
	for i, v := range m.Pix {
		if v != 0 {
			b.set(i, RGB{1, 1, 1})
		}
	}
	return b
}

// Render composites img and m according to mode. The mask may be nil in
// ModeImageOnly.
func Render(img *raster.Image, m *raster.Mask, table ClassColorTable, mode Mode) (*Buffer, error) {
	if img == nil {
		return nil, errors.New("render: no image")
	}
	if mode != ModeImageOnly {
		if m == nil {
			return nil, errors.New("render: no mask")
		}
		if err := raster.CheckShape(m.Shape(), img.Shape()); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	}

	var out *Buffer
	switch mode {
	case ModeImageOnly:
		out = Promote(img)
	case ModeMaskOnly:
		if m.Max() <= 1 {
			out = binaryMask(m)
		} else {
			out = Colorize(m, table)
		}
	case ModeOverlay:
		out = Promote(img)
		if m.Max() <= 1 {
			for i, v := range m.Pix {
				if v != 0 {
					out.Pix[i*3+2] = 1
				}
			}
		} else {
			floats.Add(out.Pix, Colorize(m, table).Pix)
			floats.Scale(0.5, out.Pix)
		}
	default:
		return nil, fmt.Errorf("render: unknown mode %v", mode)
	}
	if err := out.Check(); err != nil {
		return nil, err
	}
	return out, nil
}
