// Package framecache tracks per-frame mask edits between the editor and a
// dataset. Each frame is Clean or Dirty; a Dirty frame carries exactly one
// pending mask until it is committed or discarded.
package framecache

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/example/segpaint/internal/dataset"
	"github.com/example/segpaint/internal/logging"
	"github.com/example/segpaint/internal/raster"
)

// Cache is the edit state for every frame of one dataset. Frames are loaded
// lazily on first access. All methods are safe for concurrent use; a commit
// holds the lock for the duration of the write so readers always observe it.
type Cache struct {
	mu     sync.Mutex
	ds     dataset.Dataset
	frames map[int]*frame
	images map[int]*raster.Image
	log    *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger overrides the package logger.
func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.log = l } }

// New returns an empty cache over ds.
func New(ds dataset.Dataset, opts ...Option) *Cache {
	c := &Cache{
		ds:     ds,
		frames: map[int]*frame{},
		images: map[int]*raster.Image{},
		log:    logging.Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dataset returns the dataset the cache is bound to.
func (c *Cache) Dataset() dataset.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ds
}

// Len reports the number of frames.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ds == nil {
		return 0
	}
	return c.ds.Len()
}

// Reset drops every frame, including uncommitted edits, and binds the cache
// to ds.
func (c *Cache) Reset(ds dataset.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lost := 0
	for _, f := range c.frames {
		if f.dirty() {
			lost++
		}
	}
	if lost > 0 {
		c.log.Warn("dropping uncommitted edits", "frames", lost)
	}
	c.ds = ds
	c.frames = map[int]*frame{}
	c.images = map[int]*raster.Image{}
}

func (c *Cache) checkIndex(index int) error {
	if c.ds == nil || index < 0 || index >= c.ds.Len() {
		return fmt.Errorf("%w: %d", ErrFrameRange, index)
	}
	return nil
}

func (c *Cache) image(index int) (*raster.Image, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	if im, ok := c.images[index]; ok {
		return im, nil
	}
	im, err := c.ds.Image(index)
	if err != nil {
		return nil, fmt.Errorf("load image %d: %w", index, err)
	}
	if err := im.Validate(); err != nil {
		return nil, fmt.Errorf("image %d: %w", index, err)
	}
	c.images[index] = im
	return im, nil
}

func (c *Cache) load(index int) (*frame, error) {
	if f, ok := c.frames[index]; ok {
		return f, nil
	}
	im, err := c.image(index)
	if err != nil {
		return nil, err
	}
	m, err := c.ds.Mask(index)
	switch {
	case errors.Is(err, dataset.ErrMaskNotFound):
		c.log.Warn("no mask stored, starting empty", "frame", index, "name", c.ds.FrameName(index))
		m = raster.NewMask(im.Shape())
	case err != nil:
		return nil, fmt.Errorf("load mask %d: %w", index, err)
	}
	if err := raster.ValidateMask(m, im.Shape()); err != nil {
		return nil, fmt.Errorf("mask %d: %w", index, err)
	}
	f := &frame{base: m, state: Clean{}}
	c.frames[index] = f
	return f, nil
}

// Image returns the frame's image, loading it on first use.
func (c *Cache) Image(index int) (*raster.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image(index)
}

// Read returns a copy of the pending mask for a Dirty frame or of the stored
// mask for a Clean one.
func (c *Cache) Read(index int) (*raster.Mask, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.load(index)
	if err != nil {
		return nil, err
	}
	return f.current().Clone(), nil
}

// State returns the frame's edit state. Frames never read are Clean.
func (c *Cache) State(index int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.frames[index]; ok {
		return f.state
	}
	return Clean{}
}

// Stage records m as the frame's pending edit, replacing any earlier one.
// The cache keeps its own copy. A mask whose shape differs from the frame
// fails with raster.ErrShapeMismatch and leaves the cache unchanged.
func (c *Cache) Stage(index int, m *raster.Mask) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.load(index)
	if err != nil {
		return err
	}
	if err := raster.CheckShape(m.Shape(), f.base.Shape()); err != nil {
		return fmt.Errorf("stage frame %d: %w", index, err)
	}
	f.state = Dirty{Pending: m.Clone()}
	return nil
}

// Commit writes the pending edit to the dataset and makes it the stored
// mask. A Clean frame returns ErrNotModified. A failed write returns a
// *PersistenceError and keeps the frame Dirty.
func (c *Cache) Commit(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(index)
}

func (c *Cache) commit(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	f, ok := c.frames[index]
	var d Dirty
	if ok {
		d, ok = f.state.(Dirty)
	}
	if !ok {
		c.log.Warn("save skipped, frame not modified", "frame", index)
		return fmt.Errorf("commit frame %d: %w", index, ErrNotModified)
	}
	if err := c.ds.SaveMask(index, d.Pending); err != nil {
		return &PersistenceError{Frame: index, Err: err}
	}
	f.base = d.Pending
	f.state = Clean{}
	c.log.Info("mask saved", "frame", index, "name", c.ds.FrameName(index))
	return nil
}

// Discard drops the pending edit. A Clean frame returns ErrNotModified.
func (c *Cache) Discard(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkIndex(index); err != nil {
		return err
	}
	f, ok := c.frames[index]
	if !ok || !f.dirty() {
		c.log.Warn("discard skipped, frame not modified", "frame", index)
		return fmt.Errorf("discard frame %d: %w", index, ErrNotModified)
	}
	f.state = Clean{}
	c.log.Info("edit discarded", "frame", index)
	return nil
}

// CommitResult is the outcome of committing one frame.
type CommitResult struct {
	Frame int
	Err   error
}

// CommitAll commits every Dirty frame in index order. A failing frame does
// not stop the others; every failure is also joined into the returned error.
func (c *Cache) CommitAll() ([]CommitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var results []CommitResult
	var errs []error
	for _, index := range c.dirtyLocked() {
		err := c.commit(index)
		results = append(results, CommitResult{Frame: index, Err: err})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (c *Cache) dirtyLocked() []int {
	var out []int
	for i, f := range c.frames {
		if f.dirty() {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Dirty returns the indices of frames with pending edits, ascending.
func (c *Cache) Dirty() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

// Modified reports whether the frame has a pending edit.
func (c *Cache) Modified(index int) bool {
	_, ok := c.State(index).(Dirty)
	return ok
}

// ModifiedFlags returns one flag per frame of the dataset.
func (c *Cache) ModifiedFlags() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ds == nil {
		return nil
	}
	flags := make([]bool, c.ds.Len())
	for i, f := range c.frames {
		if i < len(flags) && f.dirty() {
			flags[i] = true
		}
	}
	return flags
}

// AnyModified reports whether any frame has a pending edit.
func (c *Cache) AnyModified() bool { return len(c.Dirty()) > 0 }
