package raster

import (
	"bytes"
	"sort"
)

// MaxLabel is the largest label a mask cell can hold.
const MaxLabel = 255

// Mask is a per-pixel label grid. Label 0 is background.
type Mask struct {
	Height int
	Width  int
	// Pix is stored row major; the label for (row, col) is Pix[row*Width+col].
	Pix []uint8
}

// NewMask returns an all-background mask.
func NewMask(s Shape) *Mask {
	return &Mask{Height: s.Height, Width: s.Width, Pix: make([]uint8, s.Len())}
}

// Shape returns the mask dimensions.
func (m *Mask) Shape() Shape { return Shape{Height: m.Height, Width: m.Width} }

// At returns the label at (row, col), or 0 when out of bounds.
func (m *Mask) At(row, col int) uint8 {
	if !m.Shape().Contains(row, col) {
		return 0
	}
	return m.Pix[row*m.Width+col]
}

// Set writes a label at (row, col). Out-of-bounds writes are ignored.
func (m *Mask) Set(row, col int, v uint8) {
	if !m.Shape().Contains(row, col) {
		return
	}
	m.Pix[row*m.Width+col] = v
}

// Fill sets every cell to v.
func (m *Mask) Fill(v uint8) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Mask{Height: m.Height, Width: m.Width, Pix: pix}
}

// Equal reports whether both masks have the same shape and labels.
func (m *Mask) Equal(o *Mask) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Shape() == o.Shape() && bytes.Equal(m.Pix, o.Pix)
}

// Max returns the largest label present.
func (m *Mask) Max() uint8 {
	var max uint8
	for _, v := range m.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// Count returns the number of cells holding label v.
func (m *Mask) Count(v uint8) int {
	n := 0
	for _, p := range m.Pix {
		if p == v {
			n++
		}
	}
	return n
}

// NonZero returns the number of labelled cells.
func (m *Mask) NonZero() int { return len(m.Pix) - m.Count(0) }

// Labels returns the distinct labels in ascending order.
func (m *Mask) Labels() []uint8 {
	var seen [MaxLabel + 1]bool
	for _, v := range m.Pix {
		seen[v] = true
	}
	var out []uint8
	for v, ok := range seen {
		if ok {
			out = append(out, uint8(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
