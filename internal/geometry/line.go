package geometry

// DigitizeLine returns every cell on the segment from *p0 to p1, both ends
// included, in order. A nil p0 marks the first point of a gesture and yields
// just p1. Consecutive cells differ by at most one step on each axis.
func DigitizeLine(p0 *Cell, p1 Cell) []Cell {
	if p0 == nil {
		return []Cell{p1}
	}
	x0, y0 := p0.X, p0.Y
	dx := abs(p1.X - x0)
	sx := -1
	if x0 < p1.X {
		sx = 1
	}
	dy := -abs(p1.Y - y0)
	sy := -1
	if y0 < p1.Y {
		sy = 1
	}
	err := dx + dy
	out := make([]Cell, 0, max(dx, -dy)+1)
	for {
		out = append(out, Cell{X: x0, Y: y0})
		if x0 == p1.X && y0 == p1.Y {
			break
		}
		e2 := 2 * err
		if e2 > dy {
			err += dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
