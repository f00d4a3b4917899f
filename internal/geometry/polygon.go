package geometry

import (
	"math"
	"sort"
)

// FillRule selects how self-overlapping polygon regions are classified.
type FillRule int

const (
	// EvenOdd marks a point inside when a ray from it crosses the outline an
	// odd number of times.
	EvenOdd FillRule = iota
	// NonZero marks a point inside when the outline winds around it.
	NonZero
)

func (r FillRule) String() string {
	switch r {
	case EvenOdd:
		return "evenodd"
	case NonZero:
		return "nonzero"
	}
	return "unknown"
}

func (r FillRule) inside(crossings, winding int) bool {
	switch r {
	case NonZero:
		return winding != 0
	default:
		return crossings%2 == 1
	}
}

const onEdgeEpsilon = 1e-9

type crossing struct {
	x   float64
	dir int
}

// PolygonContains reports, for every pixel of a width x height grid, whether
// its center lies inside the closed polygon. The result is indexed
// [row][col]. Pixel centers lying exactly on an edge count as inside.
// Polygons with fewer than three vertices contain nothing.
func PolygonContains(vertices []Vertex, width, height int, rule FillRule) [][]bool {
	grid := make([][]bool, height)
	for i := range grid {
		grid[i] = make([]bool, width)
	}
	n := len(vertices)
	if n < 3 || width <= 0 || height <= 0 {
		return grid
	}

	xs := make([]crossing, 0, n)
	for row := 0; row < height; row++ {
		y := float64(row)
		xs = xs[:0]
		for i := 0; i < n; i++ {
			a, b := vertices[i], vertices[(i+1)%n]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			dir := -1
			if b.Y > a.Y {
				dir = 1
			}
			xs = append(xs, crossing{x: a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y), dir: dir})
		}
		sort.Slice(xs, func(i, j int) bool { return xs[i].x < xs[j].x })
		winding := 0
		for k := 0; k+1 < len(xs); k++ {
			winding += xs[k].dir
			if !rule.inside(k+1, winding) {
				continue
			}
			lo := max(int(math.Ceil(xs[k].x)), 0)
			hi := min(int(math.Ceil(xs[k+1].x))-1, width-1)
			for col := lo; col <= hi; col++ {
				grid[row][col] = true
			}
		}
	}

	for i := 0; i < n; i++ {
		markEdge(grid, vertices[i], vertices[(i+1)%n], width, height)
	}
	return grid
}

// markEdge sets the pixel centers that lie on segment ab.
func markEdge(grid [][]bool, a, b Vertex, width, height int) {
	if a.Y == b.Y {
		if a.Y != math.Round(a.Y) {
			return
		}
		row := int(a.Y)
		if row < 0 || row >= height {
			return
		}
		lo := max(int(math.Ceil(math.Min(a.X, b.X))), 0)
		hi := min(int(math.Floor(math.Max(a.X, b.X))), width-1)
		for col := lo; col <= hi; col++ {
			grid[row][col] = true
		}
		return
	}
	lo := max(int(math.Ceil(math.Min(a.Y, b.Y))), 0)
	hi := min(int(math.Floor(math.Max(a.Y, b.Y))), height-1)
	for row := lo; row <= hi; row++ {
		x := a.X + (float64(row)-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		col := math.Round(x)
		if math.Abs(x-col) > onEdgeEpsilon || col < 0 || int(col) >= width {
			continue
		}
		grid[row][int(col)] = true
	}
}
