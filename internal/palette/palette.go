// Package palette loads the colors used to display mask classes.
package palette

import (
	"embed"
	"image/color"

	"github.com/example/segpaint/internal/render"
)

//go:embed defaults/*.palette
var embedded embed.FS

// Palette names one color per supported class.
type Palette struct {
	Name   string
	Colors [render.MaxClasses]color.RGBA
}

// Default returns the built-in palette, matching render.DefaultClassColors.
func Default() *Palette {
	p := &Palette{Name: "default"}
	for i, c := range render.DefaultClassColors()[:render.MaxClasses] {
		p.Colors[i] = c.RGBA()
	}
	return p
}

// Table converts the palette for the compositor.
func (p *Palette) Table() render.ClassColorTable {
	t := make(render.ClassColorTable, len(p.Colors))
	for i, c := range p.Colors {
		t[i] = render.FromRGBA(c)
	}
	return t
}

// Clone returns a deep copy.
func (p *Palette) Clone() *Palette {
	c := *p
	return &c
}
