package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestMaskSetIgnoresOutOfBounds(t *testing.T) {
	m := NewMask(Shape{Height: 2, Width: 3})
	m.Set(-1, 0, 4)
	m.Set(0, 3, 4)
	m.Set(2, 0, 4)
	m.Set(1, 2, 7)
	if got := m.NonZero(); got != 1 {
		t.Fatalf("unexpected labelled count: got %d want 1", got)
	}
	if got := m.At(1, 2); got != 7 {
		t.Fatalf("unexpected label: got %d want 7", got)
	}
	if got := m.At(5, 5); got != 0 {
		t.Fatalf("out of bounds read: got %d want 0", got)
	}
}

func TestMaskCloneIsIndependent(t *testing.T) {
	m := NewMask(Shape{Height: 2, Width: 2})
	c := m.Clone()
	c.Set(0, 0, 1)
	if m.At(0, 0) != 0 {
		t.Fatalf("clone shares storage with original")
	}
	if m.Equal(c) {
		t.Fatalf("masks should differ after edit")
	}
}

func TestMaskLabels(t *testing.T) {
	m := &Mask{Height: 1, Width: 5, Pix: []uint8{0, 3, 1, 3, 0}}
	got := m.Labels()
	want := []uint8{0, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("unexpected labels: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected labels: got %v want %v", got, want)
		}
	}
	if m.Max() != 3 {
		t.Fatalf("unexpected max: got %d want 3", m.Max())
	}
}

func TestCheckShape(t *testing.T) {
	err := CheckShape(Shape{Height: 50, Width: 50}, Shape{Height: 100, Width: 100})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if err := CheckShape(Shape{Height: 4, Width: 4}, Shape{Height: 4, Width: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromImageGrayKeepsSingleChannel(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(0, 0, color.Gray{Y: 255})
	im := FromImage(g)
	if im.Channels != 1 {
		t.Fatalf("unexpected channels: got %d want 1", im.Channels)
	}
	if im.At(0, 0, 0) != 1 || im.At(0, 1, 0) != 0 {
		t.Fatalf("unexpected samples: %v", im.Pix)
	}
	if err := im.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFromImageRGBDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 255, A: 128})
	im := FromImage(src)
	if im.Channels != 3 {
		t.Fatalf("unexpected channels: got %d want 3", im.Channels)
	}
	if im.At(0, 0, 0) != 1 || im.At(0, 0, 1) != 0 || im.At(0, 0, 2) != 1 {
		t.Fatalf("unexpected samples: %v", im.Pix)
	}
}

func TestMaskFromPalettedKeepsIndices(t *testing.T) {
	p := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{color.Black, color.White, color.RGBA{255, 0, 0, 255}})
	p.SetColorIndex(1, 0, 2)
	m, err := MaskFromImage(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.At(0, 0) != 0 || m.At(0, 1) != 2 {
		t.Fatalf("unexpected labels: %v", m.Pix)
	}
}

func TestMaskGrayRoundTrip(t *testing.T) {
	m := &Mask{Height: 2, Width: 2, Pix: []uint8{0, 1, 2, 255}}
	back, err := MaskFromImage(m.Gray())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(m) {
		t.Fatalf("unexpected labels: got %v want %v", back.Pix, m.Pix)
	}
}

func gray16(pix ...uint16) *image.Gray16 {
	g := image.NewGray16(image.Rect(0, 0, len(pix), 1))
	for x, v := range pix {
		g.SetGray16(x, 0, color.Gray16{Y: v})
	}
	return g
}

func TestMaskFromGray16(t *testing.T) {
	tests := []struct {
		pix  []uint16
		want []uint8
	}{
		{[]uint16{0, 1, 2, 255}, []uint8{0, 1, 2, 255}},
		{[]uint16{0, 0xffff, 0}, []uint8{0, 255, 0}},
	}
	for _, tt := range tests {
		m, err := MaskFromImage(gray16(tt.pix...))
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tt.pix, err)
		}
		if !bytes.Equal(m.Pix, tt.want) {
			t.Fatalf("%v: unexpected labels: got %v want %v", tt.pix, m.Pix, tt.want)
		}
	}
}

func TestMaskFromGray16RejectsWideValues(t *testing.T) {
	for _, pix := range [][]uint16{{0, 256}, {0, 1, 0xffff}} {
		if _, err := MaskFromImage(gray16(pix...)); !errors.Is(err, ErrLabelRange) {
			t.Fatalf("%v: unexpected error: got %v want %v", pix, err, ErrLabelRange)
		}
	}
}

func TestImageValidateRejectsRange(t *testing.T) {
	im := NewImage(Shape{Height: 1, Width: 1}, 3)
	im.Pix[1] = 1.5
	if err := im.Validate(); err == nil {
		t.Fatalf("expected range error")
	}
	im = &Image{Height: 1, Width: 1, Channels: 4, Pix: make([]float64, 4)}
	if err := im.Validate(); err == nil {
		t.Fatalf("expected channel error")
	}
}
