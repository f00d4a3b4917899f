package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// ManifestName is the optional per-dataset settings file.
const ManifestName = "segpaint.toml"

// Manifest describes a directory dataset. Every field is optional.
type Manifest struct {
	Name       string   `toml:"name"`
	Classes    int      `toml:"classes"`
	ClassNames []string `toml:"class_names"`
	ImagesDir  string   `toml:"images_dir"`
	MasksDir   string   `toml:"masks_dir"`
	// Pattern extracts the frame number from file names. Its first capture
	// group pairs images with masks.
	Pattern string `toml:"pattern"`
}

// DefaultManifest is used when a dataset has no manifest file.
func DefaultManifest() Manifest {
	return Manifest{
		ImagesDir: "imgs",
		MasksDir:  "masks",
		Pattern:   `frame-(\d+)`,
	}
}

// LoadManifest reads root/segpaint.toml over the defaults. A missing file is
// not an error. Keys the manifest does not define are reported in unknown.
func LoadManifest(root string) (m Manifest, unknown []string, err error) {
	m = DefaultManifest()
	path := filepath.Join(root, ManifestName)
	md, err := toml.DecodeFile(path, &m)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultManifest(), nil, nil
	}
	if err != nil {
		return m, nil, fmt.Errorf("read %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	if err := m.validate(); err != nil {
		return m, unknown, fmt.Errorf("%s: %w", path, err)
	}
	return m, unknown, nil
}

func (m Manifest) validate() error {
	if m.Classes < 0 {
		return fmt.Errorf("classes must not be negative")
	}
	if m.Classes > 0 && len(m.ClassNames) > m.Classes {
		return fmt.Errorf("%d class names for %d classes", len(m.ClassNames), m.Classes)
	}
	re, err := regexp.Compile(m.Pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("pattern %q has no capture group", m.Pattern)
	}
	return nil
}

// WriteManifest stores m as root/segpaint.toml.
func WriteManifest(root string, m Manifest) error {
	f, err := os.Create(filepath.Join(root, ManifestName))
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
