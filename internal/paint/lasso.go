package paint

import (
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/raster"
)

// ApplyLassoFill returns a copy of base with every pixel whose center lies
// inside the polygon set to value. base is not modified.
func ApplyLassoFill(base *raster.Mask, vertices []geometry.Vertex, value uint8, rule geometry.FillRule) *raster.Mask {
	out := base.Clone()
	inside := geometry.PolygonContains(vertices, out.Width, out.Height, rule)
	for row, cols := range inside {
		for col, ok := range cols {
			if ok {
				out.Pix[row*out.Width+col] = value
			}
		}
	}
	return out
}
