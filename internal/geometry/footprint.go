package geometry

import "sort"

// BrushFootprint returns the offsets covered by a filled disk of the given
// diameter centered on the origin. The outline comes from the midpoint
// circle algorithm and the interior is flood filled from the origin.
//
// Even widths cannot be centered on a cell, so the negative half of the disk
// is shifted by one: the footprint is symmetric about (-0.5, -0.5) instead of
// the origin. Widths below 1 are treated as 1. Offsets are sorted by row then
// column.
func BrushFootprint(width int) []Cell {
	if width < 1 {
		width = 1
	}
	radius := width / 2
	offset := 0
	if width%2 == 0 {
		radius--
		offset = -1
	}

	outline := map[Cell]struct{}{}
	add := func(x, y int) { outline[Cell{X: x, Y: y}] = struct{}{} }
	if offset != 0 {
		add(offset, radius)
		add(radius, offset)
		add(offset, -radius+offset)
		add(-radius+offset, offset)
	}
	add(0, radius)
	add(radius, 0)
	add(0, -radius+offset)
	add(-radius+offset, 0)

	f := 1 - radius
	ddx, ddy := 0, -2*radius
	x, y := 0, radius
	for x < y {
		if f >= 0 {
			y--
			ddy += 2
			f += ddy
		}
		x++
		ddx += 2
		f += ddx + 1

		add(x, y)
		add(-x+offset, y)
		add(x, -y+offset)
		add(-x+offset, -y+offset)
		add(y, x)
		add(-y+offset, x)
		add(y, -x+offset)
		add(-y+offset, -x+offset)
	}

	lo, hi := 0, 0
	for c := range outline {
		lo = min(lo, c.X, c.Y)
		hi = max(hi, c.X, c.Y)
	}
	size := hi - lo + 1
	grid := make([]bool, size*size)
	for c := range outline {
		grid[(c.Y-lo)*size+(c.X-lo)] = true
	}
	floodFill(grid, size, size, -lo, -lo)

	out := make([]Cell, 0, len(grid))
	for i, set := range grid {
		if set {
			out = append(out, Cell{X: i%size + lo, Y: i/size + lo})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// floodFill sets every cell 4-connected to (x, y) that shares its value.
// Filling a region that is already set leaves the grid unchanged.
func floodFill(grid []bool, width, height, x, y int) {
	if x < 0 || y < 0 || x >= width || y >= height || grid[y*width+x] {
		return
	}
	type seed struct{ x, y int }
	stack := []seed{{x, y}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		row := s.y * width
		if grid[row+s.x] {
			continue
		}
		l := s.x
		for l > 0 && !grid[row+l-1] {
			l--
		}
		r := s.x
		for r < width-1 && !grid[row+r+1] {
			r++
		}
		for i := l; i <= r; i++ {
			grid[row+i] = true
		}
		for _, ny := range [2]int{s.y - 1, s.y + 1} {
			if ny < 0 || ny >= height {
				continue
			}
			adj := ny * width
			inSpan := false
			for i := l; i <= r; i++ {
				if grid[adj+i] {
					inSpan = false
					continue
				}
				if !inSpan {
					stack = append(stack, seed{i, ny})
					inSpan = true
				}
			}
		}
	}
}
