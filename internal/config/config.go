package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/segpaint/internal/palette"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Config holds the application configuration.
type Config struct {
	Datasets      []string
	Palette       string
	Classes       int
	BrushWidth    int
	View          string
	Tool          string
	RescaleBinary bool
	Notify        Notify
	Palettes      map[string]*palette.Palette
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Palette:       "", // empty falls back to env, then the built-in default
		Classes:       1,
		BrushWidth:    5,
		View:          "overlay",
		Tool:          "lasso",
		RescaleBinary: true,
		Palettes:      make(map[string]*palette.Palette),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	for _, d := range c.Datasets {
		fmt.Fprintf(&sb, "dataset = %s\n", d)
	}
	if c.Palette != "" {
		fmt.Fprintf(&sb, "palette = %s\n", c.Palette)
	}
	fmt.Fprintf(&sb, "classes = %d\n", c.Classes)
	fmt.Fprintf(&sb, "brush_width = %d\n", c.BrushWidth)
	fmt.Fprintf(&sb, "view = %s\n", c.View)
	fmt.Fprintf(&sb, "tool = %s\n", c.Tool)
	fmt.Fprintf(&sb, "rescale_binary = %v\n", c.RescaleBinary)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var names []string
	for name := range c.Palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := c.Palettes[name]
		fmt.Fprintf(&sb, "[palette.%s]\n", name)
		for i, col := range p.Colors {
			fmt.Fprintf(&sb, "class%d = %s\n", i+1, palette.Hex(col))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// LookupPalette resolves a palette by name, preferring palettes defined in the
// config file over the loader's search path.
func (c *Config) LookupPalette(l *palette.Loader, name string) (*palette.Palette, error) {
	if p, ok := c.Palettes[name]; ok {
		return p.Clone(), nil
	}
	return l.Load(name)
}
