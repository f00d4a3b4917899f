package dataset

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/example/segpaint/internal/logging"
	"github.com/example/segpaint/internal/raster"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

type dirFrame struct {
	name  string
	image string
	mask  string
}

// Dir is a dataset stored on disk as an image directory and a mask
// directory. Masks are paired with images by the frame number captured by
// the manifest pattern, or by file stem when the pattern does not match.
type Dir struct {
	mu       sync.Mutex
	root     string
	masksDir string
	manifest Manifest
	frames   []dirFrame

	rescaleBinary bool
	log           *slog.Logger
}

// DirOption configures Open.
type DirOption func(*Dir)

// WithRescaleBinary controls whether masks holding exactly the values 0 and
// 255 are read as 0 and 1. Enabled by default.
func WithRescaleBinary(on bool) DirOption { return func(d *Dir) { d.rescaleBinary = on } }

// WithLogger overrides the package logger.
func WithLogger(l *slog.Logger) DirOption { return func(d *Dir) { d.log = l } }

// Open scans root and returns the dataset. It fails when no image is found.
func Open(root string, opts ...DirOption) (*Dir, error) {
	d := &Dir{root: root, rescaleBinary: true, log: logging.Logger()}
	for _, o := range opts {
		o(d)
	}
	m, unknown, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		d.log.Warn("ignoring unknown manifest keys", "keys", unknown)
	}
	if m.Name == "" {
		m.Name = filepath.Base(filepath.Clean(root))
	}
	d.manifest = m
	d.masksDir = filepath.Join(root, m.MasksDir)
	if err := d.scan(); err != nil {
		return nil, err
	}
	if err := Validate(d); err != nil {
		return nil, err
	}
	d.log.Info("dataset opened", "name", m.Name, "frames", len(d.frames))
	return d, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func stem(name string) string { return strings.TrimSuffix(name, filepath.Ext(name)) }

func (d *Dir) scan() error {
	re := regexp.MustCompile(d.manifest.Pattern)
	key := func(name string) string {
		if m := re.FindStringSubmatch(name); m != nil {
			return "#" + m[1]
		}
		return stem(name)
	}

	imagesDir := filepath.Join(d.root, d.manifest.ImagesDir)
	images, err := listFiles(imagesDir)
	if err != nil {
		return fmt.Errorf("scan images: %w", err)
	}
	masks, err := listFiles(d.masksDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("scan masks: %w", err)
	}
	byKey := map[string]string{}
	for _, name := range masks {
		k := key(name)
		if _, dup := byKey[k]; !dup {
			byKey[k] = name
		}
	}

	found := 0
	d.frames = d.frames[:0]
	for _, name := range images {
		f := dirFrame{name: name, image: filepath.Join(imagesDir, name)}
		if mask, ok := byKey[key(name)]; ok {
			f.mask = filepath.Join(d.masksDir, mask)
			found++
		}
		d.frames = append(d.frames, f)
	}
	d.log.Info("dataset scanned", "root", d.root, "images", len(images), "masks", found)
	return nil
}

// Root returns the dataset directory.
func (d *Dir) Root() string { return d.root }

// Manifest returns the effective manifest.
func (d *Dir) Manifest() Manifest { return d.manifest }

func (d *Dir) Name() string { return d.manifest.Name }

func (d *Dir) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func (d *Dir) frame(index int) (dirFrame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.frames) {
		return dirFrame{}, fmt.Errorf("frame %d out of range", index)
	}
	return d.frames[index], nil
}

func (d *Dir) FrameName(index int) string {
	f, err := d.frame(index)
	if err != nil {
		return ""
	}
	return f.name
}

// HasMask reports whether a mask file exists for the frame.
func (d *Dir) HasMask(index int) bool {
	f, err := d.frame(index)
	return err == nil && f.mask != ""
}

// MaskPath returns where the frame's mask is or will be stored.
func (d *Dir) MaskPath(index int) string {
	f, err := d.frame(index)
	if err != nil {
		return ""
	}
	if f.mask != "" {
		return f.mask
	}
	return filepath.Join(d.masksDir, stem(f.name)+".png")
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func (d *Dir) Image(index int) (*raster.Image, error) {
	f, err := d.frame(index)
	if err != nil {
		return nil, err
	}
	img, err := decodeFile(f.image)
	if err != nil {
		return nil, err
	}
	return raster.FromImage(img), nil
}

func (d *Dir) Mask(index int) (*raster.Mask, error) {
	f, err := d.frame(index)
	if err != nil {
		return nil, err
	}
	if f.mask == "" {
		return nil, fmt.Errorf("%s: %w", f.name, ErrMaskNotFound)
	}
	img, err := decodeFile(f.mask)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", f.name, ErrMaskNotFound)
	}
	if err != nil {
		return nil, err
	}
	m, err := raster.MaskFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.mask, err)
	}
	if d.rescaleBinary && RescaleBinary(m) {
		d.log.Info("read 0/255 mask as binary", "frame", index, "name", f.name)
	}
	return m, nil
}

// RescaleBinary maps 255 to 1 in place when the mask holds exactly the
// labels 0 and 255. It reports whether the mask was changed.
func RescaleBinary(m *raster.Mask) bool {
	labels := m.Labels()
	if len(labels) != 2 || labels[0] != 0 || labels[1] != raster.MaxLabel {
		return false
	}
	for i, v := range m.Pix {
		if v != 0 {
			m.Pix[i] = 1
		}
	}
	return true
}

// SaveMask writes m as an 8-bit gray PNG. The file is written next to its
// destination and renamed into place.
func (d *Dir) SaveMask(index int, m *raster.Mask) error {
	path := d.MaskPath(index)
	if path == "" {
		return fmt.Errorf("frame %d out of range", index)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".segpaint-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, m.Gray()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	d.mu.Lock()
	d.frames[index].mask = path
	d.mu.Unlock()
	return nil
}

// ClassCount reports the number of classes declared by the manifest, or 0.
func (d *Dir) ClassCount() int { return d.manifest.Classes }

// ClassNames returns the class names declared by the manifest.
func (d *Dir) ClassNames() []string { return d.manifest.ClassNames }
