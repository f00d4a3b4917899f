package palette

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/example/segpaint/internal/render"
)

// Parse reads a palette definition. Each line is "Key: value"; Name sets the
// palette name and Class1 to Class10 set class colors as #RRGGBB. Classes
// that are not listed keep their default color.
func Parse(r io.Reader) (*Palette, error) {
	p := Default()
	p.Name = ""
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if strings.EqualFold(key, "name") {
			p.Name = value
			continue
		}
		class, ok := ClassKey(key)
		if !ok {
			continue
		}
		col, err := ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid color for %s: %w", lineNo, key, err)
		}
		p.Colors[class-1] = col
	}
	return p, scanner.Err()
}

// ClassKey extracts the class number from keys like "Class3" or "class3".
func ClassKey(key string) (int, bool) {
	lower := strings.ToLower(key)
	if !strings.HasPrefix(lower, "class") {
		return 0, false
	}
	n, err := strconv.Atoi(lower[len("class"):])
	if err != nil || n < 1 || n > render.MaxClasses {
		return 0, false
	}
	return n, true
}

// ParseColor parses #RRGGBB or #RRGGBBAA. Alpha is kept but the compositor
// ignores it.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 0xff}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
