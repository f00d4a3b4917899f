package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// FromImage converts a decoded image into float samples. Gray sources keep a
// single channel; everything else becomes RGB with alpha dropped.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	s := Shape{Height: b.Dy(), Width: b.Dx()}
	switch src.(type) {
	case *image.Gray, *image.Gray16:
		im := NewImage(s, 1)
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				g := color.Gray16Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				im.Set(y, x, 0, float64(g.Y)/0xffff)
			}
		}
		return im
	}
	im := NewImage(s, 3)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			im.Set(y, x, 0, float64(c.R)/0xffff)
			im.Set(y, x, 1, float64(c.G)/0xffff)
			im.Set(y, x, 2, float64(c.B)/0xffff)
		}
	}
	return im
}

// ErrLabelRange is returned for a 16-bit mask holding a value that does not
// fit a label.
var ErrLabelRange = errors.New("mask value exceeds label range")

// MaskFromImage reads labels out of a decoded mask image. Paletted images
// keep their palette indices, gray images their gray level, and any other
// model is reduced through luma. 16-bit gray values are read raw; a mask
// holding exactly 0 and 65535 is read as 0 and 255.
func MaskFromImage(src image.Image) (*Mask, error) {
	b := src.Bounds()
	m := NewMask(Shape{Height: b.Dy(), Width: b.Dx()})
	switch s := src.(type) {
	case *image.Paletted:
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				m.Pix[y*m.Width+x] = s.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
			}
		}
	case *image.Gray:
		for y := 0; y < m.Height; y++ {
			off := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(m.Pix[y*m.Width:(y+1)*m.Width], s.Pix[off:off+m.Width])
		}
	case *image.Gray16:
		if err := maskFromGray16(m, s); err != nil {
			return nil, err
		}
	default:
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				g := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				m.Pix[y*m.Width+x] = g.Y
			}
		}
	}
	return m, nil
}

func maskFromGray16(m *Mask, s *image.Gray16) error {
	b := s.Bounds()
	binary := true
	var over uint16
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := s.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			if v != 0 && v != 0xffff {
				binary = false
			}
			if v > MaxLabel && v > over {
				over = v
			}
			m.Pix[y*m.Width+x] = uint8(min(v, MaxLabel))
		}
	}
	if over != 0 && !binary {
		return fmt.Errorf("%w: %d > %d", ErrLabelRange, over, MaxLabel)
	}
	return nil
}

// Gray returns the mask as an 8-bit single channel image.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}
