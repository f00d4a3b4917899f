// Package paint burns brush strokes and lasso fills into label masks.
package paint

import (
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/raster"
)

// Stroke is a brush gesture in progress. It owns a scratch copy of the mask
// so the frame's stored mask is untouched until the stroke is finished.
type Stroke struct {
	scratch   *raster.Mask
	footprint []geometry.Cell
	last      *geometry.Cell
	stamps    int
}

// BeginStroke starts a gesture on a copy of base using a disk brush of the
// given width.
func BeginStroke(base *raster.Mask, width int) *Stroke {
	return &Stroke{
		scratch:   base.Clone(),
		footprint: geometry.BrushFootprint(width),
	}
}

// Extend stamps the brush along the line from the previous pointer cell to
// p. Cells outside the mask are dropped. Extending to the cell that was
// stamped last is a no-op. The returned mask is the live scratch buffer and
// must not be retained past End.
func (s *Stroke) Extend(p geometry.Cell, value uint8) *raster.Mask {
	if s.last != nil && *s.last == p {
		return s.scratch
	}
	for _, c := range geometry.DigitizeLine(s.last, p) {
		s.stamp(c, value)
	}
	s.last = &p
	return s.scratch
}

func (s *Stroke) stamp(at geometry.Cell, value uint8) {
	for _, off := range s.footprint {
		c := at.Add(off)
		s.scratch.Set(c.Y, c.X, value)
	}
	s.stamps++
}

// Mask returns the scratch buffer for preview.
func (s *Stroke) Mask() *raster.Mask { return s.scratch }

// Stamps reports how many footprints have been applied.
func (s *Stroke) Stamps() int { return s.stamps }

// End finishes the gesture and hands back the painted mask. The stroke must
// not be used afterwards.
func (s *Stroke) End() *raster.Mask {
	m := s.scratch
	s.scratch = nil
	s.last = nil
	return m
}
