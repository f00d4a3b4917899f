package render

import (
	"fmt"
	"image/color"
	"math"
)

// MaxClasses is the largest number of foreground classes the editor supports.
const MaxClasses = 10

// RGB is a color with float components in [0, 1].
type RGB struct {
	R, G, B float64
}

// RGBA converts c to an opaque 8-bit color.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 0xff}
}

// FromRGBA converts an 8-bit color, ignoring alpha.
func FromRGBA(c color.RGBA) RGB {
	return RGB{R: float64(c.R) / 0xff, G: float64(c.G) / 0xff, B: float64(c.B) / 0xff}
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 0xff))
}

// ClassColorTable maps class labels to display colors. Label i (from 1)
// uses entry i-1.
type ClassColorTable []RGB

var defaultClassColors = ClassColorTable{
	{0, 0, 1},
	{1, 0, 0},
	{0, 1, 0},
	{1, 1, 0},
	{0, 1, 1},
	{1, 0, 1},
	{0.5, 1, 0},
	{0, 0.5, 1},
	{1, 0, 0.5},
	{1, 0.5, 0},
}

// DefaultClassColors returns a copy of the built-in table.
func DefaultClassColors() ClassColorTable {
	t := make(ClassColorTable, len(defaultClassColors))
	copy(t, defaultClassColors)
	return t
}

// Color returns the color for a foreground label. Labels past the end of the
// table wrap around. Label 0 is black.
func (t ClassColorTable) Color(label uint8) RGB {
	if label == 0 || len(t) == 0 {
		return RGB{}
	}
	return t[(int(label)-1)%len(t)]
}

// Validate checks that the table covers every supported class and that all
// components are in range.
func (t ClassColorTable) Validate() error {
	if len(t) < MaxClasses {
		return fmt.Errorf("class color table has %d entries, want at least %d", len(t), MaxClasses)
	}
	for i, c := range t {
		for _, v := range [3]float64{c.R, c.G, c.B} {
			if math.IsNaN(v) || v < 0 || v > 1 {
				return fmt.Errorf("class %d color out of range: %+v", i+1, c)
			}
		}
	}
	return nil
}
