package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/segpaint/internal/palette"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentPalette *palette.Palette
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		line = stripComment(line)

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentPalette = nil

			if name, ok := strings.CutPrefix(currentSection, "palette."); ok {
				// Start with defaults so missing classes are fine
				currentPalette = palette.Default()
				currentPalette.Name = name
				cfg.Palettes[name] = currentPalette
			}
			continue
		}

		// Key = Value or Key: Value
		var key, value string
		var ok bool
		if strings.Contains(line, "=") {
			key, value, ok = strings.Cut(line, "=")
		} else {
			key, value, ok = strings.Cut(line, ":")
		}
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentPalette != nil:
			err = setPaletteField(currentPalette, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("line %d [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

// stripComment drops a trailing "# ..." comment. A comment marker must be
// followed by a space or end the line, so colors like #FF0000 stay intact.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' || (i > 0 && line[i-1] != ' ' && line[i-1] != '\t') {
			continue
		}
		if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "dataset":
		cfg.Datasets = append(cfg.Datasets, value)
	case "palette":
		cfg.Palette = value
	case "classes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		cfg.Classes = n
	case "brush_width":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		cfg.BrushWidth = n
	case "view":
		cfg.View = strings.ToLower(value)
	case "tool":
		cfg.Tool = strings.ToLower(value)
	case "rescale_binary":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		cfg.RescaleBinary = b
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setPaletteField(p *palette.Palette, key, value string) error {
	if strings.EqualFold(key, "name") {
		p.Name = value
		return nil
	}
	class, ok := palette.ClassKey(key)
	if !ok {
		return nil
	}
	col, err := palette.ParseColor(value)
	if err != nil {
		return fmt.Errorf("invalid color for %s: %w", key, err)
	}
	p.Colors[class-1] = col
	return nil
}
