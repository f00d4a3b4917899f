package config

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/example/segpaint/internal/palette"
)

func TestParse(t *testing.T) {
	input := `
dataset = /data/cells
dataset = "/data/nuclei"
palette = mine
classes = 3
brush_width = 9
view = Mask       # overlay | image | mask
tool = brush
rescale_binary = false

[notify]
save = true
copy = false

[palette.mine]
class1 = #0000FF
Class2: #FF000080
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if want := []string{"/data/cells", "/data/nuclei"}; !reflect.DeepEqual(cfg.Datasets, want) {
		t.Errorf("unexpected datasets: got %v want %v", cfg.Datasets, want)
	}
	if cfg.Palette != "mine" {
		t.Errorf("unexpected palette: got %q", cfg.Palette)
	}
	if cfg.Classes != 3 || cfg.BrushWidth != 9 {
		t.Errorf("unexpected classes/width: got %d/%d", cfg.Classes, cfg.BrushWidth)
	}
	if cfg.View != "mask" {
		t.Errorf("unexpected view: got %q want mask", cfg.View)
	}
	if cfg.Tool != "brush" {
		t.Errorf("unexpected tool: got %q", cfg.Tool)
	}
	if cfg.RescaleBinary {
		t.Error("expected rescale_binary to be false")
	}
	if !cfg.Notify.Save || cfg.Notify.Copy {
		t.Errorf("unexpected notify: %+v", cfg.Notify)
	}

	p, ok := cfg.Palettes["mine"]
	if !ok {
		t.Fatal("expected palette 'mine' to be loaded")
	}
	if got, want := p.Colors[0], (color.RGBA{B: 0xff, A: 0xff}); got != want {
		t.Errorf("unexpected class1: got %v want %v", got, want)
	}
	if got, want := p.Colors[1], (color.RGBA{R: 0xff, A: 0x80}); got != want {
		t.Errorf("unexpected class2: got %v want %v", got, want)
	}
	if got, want := p.Colors[2], palette.Default().Colors[2]; got != want {
		t.Errorf("unlisted class should keep default: got %v want %v", got, want)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# nothing here\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Classes != 1 || cfg.BrushWidth != 5 || cfg.Tool != "lasso" || cfg.View != "overlay" || !cfg.RescaleBinary {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"classes": "classes = three\n",
		"notify":  "[notify]\nsave = maybe\n",
		"palette": "[palette.x]\nclass1 = blue\n",
		"rescale": "rescale_binary = sometimes\n",
		"width":   "\nbrush_width = 5px\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			if !strings.HasPrefix(err.Error(), "line ") {
				t.Fatalf("error should carry a line number: %v", err)
			}
		})
	}
}

func TestCircular(t *testing.T) {
	input := `dataset = /data/a
palette = custom
classes = 4
brush_width = 12
view = image
tool = brush
rescale_binary = true

[notify]
save = true
copy = true

[palette.custom]
class1 = #112233
class10 = #ABCDEF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("second parse failed: %v\n%s", err, generated)
	}

	if !reflect.DeepEqual(cfg, cfg2) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v\n%s", cfg2, cfg, generated)
	}
}

func TestLoaderOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	if err := os.WriteFile(path, []byte("classes = 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewLoader("1.0.0", path)
	if got := l.GetConfigPath(); got != path {
		t.Fatalf("unexpected path: got %q want %q", got, path)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classes != 7 {
		t.Fatalf("unexpected classes: got %d want 7", cfg.Classes)
	}
}

func TestLoaderMissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	l := NewLoader("1.0.0", filepath.Join(t.TempDir(), "absent.rc"))
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, New()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.rc")
	cfg := New()
	cfg.Classes = 2
	cfg.Palettes["p"] = palette.Default()
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg2, err := NewLoader("1.0.0", path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg2.Classes != 2 {
		t.Fatalf("unexpected classes: got %d", cfg2.Classes)
	}
	if _, ok := cfg2.Palettes["p"]; !ok {
		t.Fatal("expected palette p to survive save")
	}
}

func TestLookupPalette(t *testing.T) {
	cfg, err := Parse(strings.NewReader("[palette.mine]\nclass1 = #010203\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	l := &palette.Loader{}
	p, err := cfg.LookupPalette(l, "mine")
	if err != nil {
		t.Fatalf("LookupPalette: %v", err)
	}
	if p.Colors[0] != (color.RGBA{R: 1, G: 2, B: 3, A: 0xff}) {
		t.Fatalf("unexpected color: %v", p.Colors[0])
	}
	p.Colors[0] = color.RGBA{}
	if cfg.Palettes["mine"].Colors[0] == p.Colors[0] {
		t.Fatal("LookupPalette must return a copy")
	}
	if _, err := cfg.LookupPalette(l, "default"); err != nil {
		t.Fatalf("builtin palette lookup: %v", err)
	}
}
