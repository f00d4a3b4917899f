package palette

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ext = ".palette"

// Loader finds palettes by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader using the per-user and system palette
// directories.
func NewLoader() *Loader {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return &Loader{
		ConfigDir: filepath.Join(dir, "segpaint", "palettes"),
		SystemDir: "/usr/share/segpaint/palettes",
	}
}

// Load resolves name in order: an existing file path, a built-in palette,
// the config directory, the system directory. An empty name yields Default.
func (l *Loader) Load(name string) (*Palette, error) {
	if name == "" {
		return Default(), nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return loadFile(name)
	}
	filename := name
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return withName(name)(Parse(f))
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path)
		}
	}
	return nil, fmt.Errorf("palette %q not found", name)
}

// Builtin lists the names of the embedded palettes.
func Builtin() []string {
	entries, err := fs.ReadDir(embedded, "defaults")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names
}

func loadFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return withName(strings.TrimSuffix(filepath.Base(path), ext))(Parse(f))
}

// withName fills in a missing Name with fallback.
func withName(fallback string) func(*Palette, error) (*Palette, error) {
	return func(p *Palette, err error) (*Palette, error) {
		if err != nil {
			return nil, err
		}
		if p.Name == "" {
			p.Name = fallback
		}
		return p, nil
	}
}
