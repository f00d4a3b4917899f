package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const bottomHeight = 24

var (
	checkerLight = color.RGBA{220, 220, 220, 255}
	checkerDark  = color.RGBA{192, 192, 192, 255}
	lassoLight   = color.RGBA{255, 255, 255, 255}
	lassoDark    = color.RGBA{0, 0, 0, 255}
	cursorColor  = color.RGBA{0, 255, 0, 255}
)

var backdropCache *image.RGBA

// fitZoom returns the largest zoom at which a frame of the given size fits
// the canvas area of the window.
func fitZoom(frame image.Point, winW, winH int) float64 {
	availH := winH - bottomHeight
	if frame.X <= 0 || frame.Y <= 0 || winW <= 0 || availH <= 0 {
		return 1
	}
	zx := float64(winW) / float64(frame.X)
	zy := float64(availH) / float64(frame.Y)
	return math.Min(zx, zy)
}

// imageRect returns the destination rectangle for the frame, anchored at the
// top left corner of the window.
func imageRect(frame image.Point, zoom float64) image.Rectangle {
	return image.Rect(0, 0, int(float64(frame.X)*zoom), int(float64(frame.Y)*zoom))
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// drawCircle outlines a circle of radius r centred at (cx, cy).
func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// drawPolyline connects screen points with a two-tone line so the outline
// stays visible on light and dark frames.
func drawPolyline(img *image.RGBA, pts []image.Point) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		drawLine(img, a.X, a.Y, b.X, b.Y, lassoDark, 3)
		drawLine(img, a.X, a.Y, b.X, b.Y, lassoLight, 1)
	}
}

// toScreen maps an image-space vertex (pixel centers at integers) into the
// window.
func toScreen(dst image.Rectangle, zoom, x, y float64) image.Point {
	return image.Pt(
		dst.Min.X+int(math.Round((x+0.5)*zoom)),
		dst.Min.Y+int(math.Round((y+0.5)*zoom)),
	)
}

// toImage is the inverse of toScreen.
func toImage(dst image.Rectangle, zoom float64, sx, sy float32) (x, y float64) {
	return (float64(sx)-float64(dst.Min.X))/zoom - 0.5, (float64(sy)-float64(dst.Min.Y))/zoom - 0.5
}
