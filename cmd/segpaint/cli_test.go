package main

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/segpaint/internal/config"
)

func writeFrame(t *testing.T, path string, w, h int, v uint8) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// newTestRoot returns a root over a fresh dataset with one 12x12 frame named
// "a.png" and no mask.
func newTestRoot(t *testing.T) (*root, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	writeFrame(t, filepath.Join(dir, "imgs", "a.png"), 12, 12, 128)
	var out bytes.Buffer
	r := &root{
		program:  "segpaint",
		config:   config.New(),
		datasets: stringList{dir},
		stdout:   &out,
		stderr:   &out,
	}
	return r, dir, &out
}

func readMask(t *testing.T, path string) *image.Gray {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open mask: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode mask: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("unexpected mask type %T", img)
	}
	return g
}

func nonZero(g *image.Gray) int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("3, 4.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.X != 3 || p.Y != 4.5 {
		t.Fatalf("unexpected point: got %v", p)
	}
	for _, bad := range []string{"3", "a,1", "1,b", ""} {
		if _, err := parsePoint(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLassoCmdSavesMask(t *testing.T) {
	r, dir, out := newTestRoot(t)
	cmd, err := parseLassoCmd([]string{"-class", "1", "2,2", "7,2", "7,7", "2,7"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m := readMask(t, filepath.Join(dir, "masks", "a.png"))
	if got := nonZero(m); got != 36 {
		t.Fatalf("unexpected filled pixels: got %d want 36", got)
	}
	if m.GrayAt(2, 2).Y != 1 || m.GrayAt(8, 8).Y != 0 {
		t.Fatalf("unexpected labels at corners: %d %d", m.GrayAt(2, 2).Y, m.GrayAt(8, 8).Y)
	}
	if !strings.Contains(out.String(), "saved a") {
		t.Fatalf("expected save message, got %q", out.String())
	}
}

func TestLassoCmdNeedsThreePoints(t *testing.T) {
	r, _, _ := newTestRoot(t)
	cmd, err := parseLassoCmd([]string{"1,1", "5,5"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, errShortLasso) {
		t.Fatalf("unexpected error: got %v want %v", err, errShortLasso)
	}
}

func TestStrokeCmdStampsDisk(t *testing.T) {
	r, dir, _ := newTestRoot(t)
	cmd, err := parseStrokeCmd([]string{"-width", "5", "5,5"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m := readMask(t, filepath.Join(dir, "masks", "a.png"))
	if got := nonZero(m); got != 21 {
		t.Fatalf("unexpected stamped pixels: got %d want 21", got)
	}
	if m.GrayAt(5, 5).Y != 1 {
		t.Fatalf("centre not painted")
	}
}

func TestStrokeCmdNoSaveLeavesDiskUntouched(t *testing.T) {
	r, dir, _ := newTestRoot(t)
	cmd, err := parseStrokeCmd([]string{"-no-save", "1,1", "4,1"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "masks", "a.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no mask file, stat returned %v", err)
	}
	if !cmd.state.Status().CurrentModified {
		t.Fatalf("expected pending edit")
	}
}

func TestRenderCmdWritesImageView(t *testing.T) {
	r, dir, _ := newTestRoot(t)
	path := filepath.Join(dir, "view.png")
	cmd, err := parseRenderCmd([]string{"-view", "image", "-o", path}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(12, 12) {
		t.Fatalf("unexpected size: got %v want 12x12", got)
	}
	red, green, blue, _ := img.At(3, 3).RGBA()
	if red>>8 != 128 || green>>8 != 128 || blue>>8 != 128 {
		t.Fatalf("unexpected pixel: got %d %d %d want 128", red>>8, green>>8, blue>>8)
	}
}

func TestRenderCmdRequiresOutput(t *testing.T) {
	r, _, _ := newTestRoot(t)
	_, err := parseRenderCmd(nil, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "-o"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestSessionWithoutDataset(t *testing.T) {
	r := &root{program: "segpaint", config: config.New()}
	if _, err := r.session(); err == nil || !strings.Contains(err.Error(), "no dataset") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
}

func TestSessionOptionsRejectUnknownTool(t *testing.T) {
	r, _, _ := newTestRoot(t)
	r.tool = "spray"
	if _, err := r.session(); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestInteractiveBrushSession(t *testing.T) {
	r, dir, out := newTestRoot(t)
	cmd, err := parseInteractiveCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.in = strings.NewReader(strings.Join([]string{
		"tool brush",
		"width 1",
		"down 1,1",
		"move 3,1",
		"up 3,1",
		"frames",
		"save",
		"save",
		"status",
		"exit",
		"width 9",
	}, "\n"))
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	m := readMask(t, filepath.Join(dir, "masks", "a.png"))
	if got := nonZero(m); got != 3 {
		t.Fatalf("unexpected painted pixels: got %d want 3", got)
	}
	text := out.String()
	for _, want := range []string{"saved frame 1", "nothing to do", "tool:brush", "width:1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got %q", want, text)
		}
	}
}

func TestInteractiveExecuteLine(t *testing.T) {
	r, _, _ := newTestRoot(t)
	cmd, err := parseInteractiveCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.st, err = cmd.session(); err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := cmd.executeLine("bogus"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := cmd.executeLine("width"); err == nil || !strings.Contains(err.Error(), "usage: width N") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if done, err := cmd.executeLine("# comment"); done || err != nil {
		t.Fatalf("unexpected result for comment: %v %v", done, err)
	}
	if done, _ := cmd.executeLine("exit"); !done {
		t.Fatalf("expected exit to end the session")
	}
	if _, err := cmd.executeLine("width 250"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cmd.st.Settings().Width; got != 100 {
		t.Fatalf("unexpected width: got %d want 100", got)
	}
}

func TestInteractiveExecFlags(t *testing.T) {
	r, dir, _ := newTestRoot(t)
	cmd, err := parseInteractiveCmd([]string{"-e", "lasso 2,2 7,2 7,7 2,7", "-e", "save"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := nonZero(readMask(t, filepath.Join(dir, "masks", "a.png"))); got != 36 {
		t.Fatalf("unexpected filled pixels: got %d want 36", got)
	}
}

func TestConfigPrint(t *testing.T) {
	r, _, out := newTestRoot(t)
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "brush_width = 5"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in output, got %q", want, out.String())
	}
}

func TestUsageErrorRendersHelp(t *testing.T) {
	r, _, _ := newTestRoot(t)
	cmd, err := parseStrokeCmd([]string{"1,1"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	help := (&UsageError{of: cmd}).Error()
	for _, want := range []string{"Usage: segpaint stroke", "-width", "-erase"} {
		if !strings.Contains(help, want) {
			t.Fatalf("expected help to contain %q, got %q", want, help)
		}
	}
	if root := (&UsageError{of: r}).Error(); !strings.Contains(root, "interactive") {
		t.Fatalf("expected command list in root help, got %q", root)
	}
}
