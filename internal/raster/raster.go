// Package raster holds the pixel grids shared by the editor: label masks and
// floating-point images.
package raster

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when two grids that must agree in size do not.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape is the height and width of a grid, in that order.
type Shape struct {
	Height int
	Width  int
}

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Height, s.Width) }

// Len reports the number of cells in the grid.
func (s Shape) Len() int { return s.Height * s.Width }

// Contains reports whether (row, col) lies inside the grid.
func (s Shape) Contains(row, col int) bool {
	return row >= 0 && row < s.Height && col >= 0 && col < s.Width
}

// CheckShape returns ErrShapeMismatch wrapped with both shapes when got and
// want differ.
func CheckShape(got, want Shape) error {
	if got != want {
		return fmt.Errorf("%w: got %v want %v", ErrShapeMismatch, got, want)
	}
	return nil
}
