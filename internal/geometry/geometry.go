// Package geometry rasterizes the editor's primitives onto integer grids:
// digitized lines, circular brush footprints and polygon interiors.
package geometry

import "math"

// Cell is an integer grid position. X is the column and Y the row.
type Cell struct {
	X, Y int
}

// Add returns the cell translated by o.
func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }

// Vertex is a polygon vertex in continuous grid coordinates, where the pixel
// at column c and row r has its center at (c, r).
type Vertex struct {
	X, Y float64
}

// Round snaps a continuous position to the nearest cell, rounding halves to
// even.
func Round(v Vertex) Cell {
	return Cell{X: int(math.RoundToEven(v.X)), Y: int(math.RoundToEven(v.Y))}
}
