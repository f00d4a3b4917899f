package framecache

import (
	"errors"
	"testing"

	"github.com/example/segpaint/internal/dataset"
	"github.com/example/segpaint/internal/raster"
)

func newDataset(t *testing.T, frames int, shape raster.Shape) *dataset.Memory {
	t.Helper()
	ds := dataset.NewMemory("test")
	for i := 0; i < frames; i++ {
		m := raster.NewMask(shape)
		m.Pix[0] = uint8(i)
		ds.Add("frame", raster.NewImage(shape, 1), m)
	}
	return ds
}

func painted(shape raster.Shape, v uint8) *raster.Mask {
	m := raster.NewMask(shape)
	m.Fill(v)
	return m
}

func TestReadCleanReturnsStoredMask(t *testing.T) {
	shape := raster.Shape{Height: 3, Width: 3}
	c := New(newDataset(t, 2, shape))
	m, err := c.Read(1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.At(0, 0) != 1 {
		t.Fatalf("unexpected mask: %v", m.Pix)
	}
	if _, ok := c.State(1).(Clean); !ok {
		t.Fatalf("unexpected state: %T", c.State(1))
	}
}

func TestReadMissingMaskSynthesizesZeros(t *testing.T) {
	ds := dataset.NewMemory("test")
	ds.Add("bare", raster.NewImage(raster.Shape{Height: 4, Width: 6}, 3), nil)
	c := New(ds)
	m, err := c.Read(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Shape() != (raster.Shape{Height: 4, Width: 6}) || m.NonZero() != 0 {
		t.Fatalf("unexpected synthesized mask %v %v", m.Shape(), m.Pix)
	}
}

func TestStageThenRead(t *testing.T) {
	shape := raster.Shape{Height: 3, Width: 3}
	c := New(newDataset(t, 1, shape))
	edit := painted(shape, 2)
	if err := c.Stage(0, edit); err != nil {
		t.Fatalf("stage: %v", err)
	}
	edit.Fill(9)
	got, err := c.Read(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(painted(shape, 2)) {
		t.Fatalf("cache kept a reference to the caller's mask: %v", got.Pix)
	}
	if !c.Modified(0) {
		t.Fatalf("frame should be modified")
	}
}

func TestStageSameMaskTwiceIsIdempotent(t *testing.T) {
	shape := raster.Shape{Height: 3, Width: 3}
	c := New(newDataset(t, 1, shape))
	edit := painted(shape, 4)
	for i := 0; i < 2; i++ {
		if err := c.Stage(0, edit); err != nil {
			t.Fatalf("stage: %v", err)
		}
	}
	got, _ := c.Read(0)
	if !got.Equal(edit) {
		t.Fatalf("unexpected pending mask: %v", got.Pix)
	}
	if d := c.Dirty(); len(d) != 1 || d[0] != 0 {
		t.Fatalf("unexpected dirty frames: %v", d)
	}
}

func TestStageShapeMismatch(t *testing.T) {
	shape := raster.Shape{Height: 100, Width: 100}
	c := New(newDataset(t, 1, shape))
	err := c.Stage(0, raster.NewMask(raster.Shape{Height: 50, Width: 50}))
	if !errors.Is(err, raster.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if c.Modified(0) {
		t.Fatalf("failed stage changed the cache")
	}
	got, _ := c.Read(0)
	if got.NonZero() != 0 {
		t.Fatalf("failed stage changed the mask")
	}
}

func TestCommitThenRead(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	ds := newDataset(t, 1, shape)
	c := New(ds)
	edit := painted(shape, 3)
	if err := c.Stage(0, edit); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := c.Commit(0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, _ := c.Read(0)
	if !got.Equal(edit) {
		t.Fatalf("unexpected mask after commit: %v", got.Pix)
	}
	stored, _ := ds.Mask(0)
	if !stored.Equal(edit) {
		t.Fatalf("dataset not updated: %v", stored.Pix)
	}
	if c.Modified(0) {
		t.Fatalf("frame should be clean after commit")
	}
}

func TestDiscardRestoresBase(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	c := New(newDataset(t, 1, shape))
	before, _ := c.Read(0)
	if err := c.Stage(0, painted(shape, 7)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := c.Discard(0); err != nil {
		t.Fatalf("discard: %v", err)
	}
	after, _ := c.Read(0)
	if !after.Equal(before) {
		t.Fatalf("unexpected mask after discard: got %v want %v", after.Pix, before.Pix)
	}
}

func TestCleanCommitAndDiscardNotModified(t *testing.T) {
	c := New(newDataset(t, 1, raster.Shape{Height: 2, Width: 2}))
	if err := c.Commit(0); !errors.Is(err, ErrNotModified) {
		t.Fatalf("commit: expected ErrNotModified, got %v", err)
	}
	if _, err := c.Read(0); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := c.Discard(0); !errors.Is(err, ErrNotModified) {
		t.Fatalf("discard: expected ErrNotModified, got %v", err)
	}
}

func TestCommitFailureKeepsFrameDirty(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	ds := newDataset(t, 1, shape)
	ds.SaveHook = func(int) error { return errors.New("disk full") }
	c := New(ds)
	if err := c.Stage(0, painted(shape, 1)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	err := c.Commit(0)
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Frame != 0 {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !c.Modified(0) {
		t.Fatalf("failed commit must leave the frame dirty")
	}
	got, _ := c.Read(0)
	if !got.Equal(painted(shape, 1)) {
		t.Fatalf("pending edit lost: %v", got.Pix)
	}
}

func TestCommitAll(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	ds := newDataset(t, 4, shape)
	c := New(ds)
	for _, i := range []int{0, 2, 3} {
		if err := c.Stage(i, painted(shape, uint8(i+1))); err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}
	results, err := c.CommitAll()
	if err != nil {
		t.Fatalf("commit all: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("unexpected results: %v", results)
	}
	if len(c.Dirty()) != 0 || c.AnyModified() {
		t.Fatalf("dirty frames remain: %v", c.Dirty())
	}
	if ds.Saves() != 3 {
		t.Fatalf("unexpected saves: got %d want 3", ds.Saves())
	}
}

func TestCommitAllPartialFailure(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	ds := newDataset(t, 3, shape)
	ds.SaveHook = func(i int) error {
		if i == 1 {
			return errors.New("read-only")
		}
		return nil
	}
	c := New(ds)
	for i := 0; i < 3; i++ {
		if err := c.Stage(i, painted(shape, 5)); err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}
	results, err := c.CommitAll()
	if err == nil {
		t.Fatalf("expected joined error")
	}
	for _, r := range results {
		if (r.Err != nil) != (r.Frame == 1) {
			t.Fatalf("unexpected result for frame %d: %v", r.Frame, r.Err)
		}
	}
	if d := c.Dirty(); len(d) != 1 || d[0] != 1 {
		t.Fatalf("unexpected dirty frames: %v", d)
	}
}

func TestModifiedFlagsAndReset(t *testing.T) {
	shape := raster.Shape{Height: 2, Width: 2}
	c := New(newDataset(t, 3, shape))
	if err := c.Stage(2, painted(shape, 1)); err != nil {
		t.Fatalf("stage: %v", err)
	}
	flags := c.ModifiedFlags()
	want := []bool{false, false, true}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("unexpected flags: got %v want %v", flags, want)
		}
	}
	other := newDataset(t, 1, shape)
	c.Reset(other)
	if c.AnyModified() || c.Len() != 1 {
		t.Fatalf("reset kept state: dirty=%v len=%d", c.Dirty(), c.Len())
	}
}

func TestFrameRange(t *testing.T) {
	c := New(newDataset(t, 1, raster.Shape{Height: 2, Width: 2}))
	if _, err := c.Read(5); !errors.Is(err, ErrFrameRange) {
		t.Fatalf("expected ErrFrameRange, got %v", err)
	}
	if err := c.Commit(-1); !errors.Is(err, ErrFrameRange) {
		t.Fatalf("expected ErrFrameRange, got %v", err)
	}
}
