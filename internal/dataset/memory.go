package dataset

import (
	"fmt"
	"sync"

	"github.com/example/segpaint/internal/raster"
)

type memFrame struct {
	name  string
	image *raster.Image
	mask  *raster.Mask
}

// Memory is a Dataset held entirely in memory.
type Memory struct {
	mu     sync.Mutex
	name   string
	frames []memFrame
	saves  int

	// SaveHook, when set, is called before every save; a non-nil result
	// fails the save.
	SaveHook func(index int) error
}

// NewMemory returns an empty in-memory dataset.
func NewMemory(name string) *Memory { return &Memory{name: name} }

// Add appends a frame. mask may be nil to simulate a frame without a stored
// mask. It returns the frame index.
func (m *Memory) Add(name string, img *raster.Image, mask *raster.Mask) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, memFrame{name: name, image: img, mask: mask.Clone()})
	return len(m.frames) - 1
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *Memory) frame(index int) (memFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.frames) {
		return memFrame{}, fmt.Errorf("frame %d out of range", index)
	}
	return m.frames[index], nil
}

func (m *Memory) FrameName(index int) string {
	f, err := m.frame(index)
	if err != nil {
		return ""
	}
	return f.name
}

func (m *Memory) Image(index int) (*raster.Image, error) {
	f, err := m.frame(index)
	if err != nil {
		return nil, err
	}
	return f.image, nil
}

func (m *Memory) Mask(index int) (*raster.Mask, error) {
	f, err := m.frame(index)
	if err != nil {
		return nil, err
	}
	if f.mask == nil {
		return nil, ErrMaskNotFound
	}
	return f.mask.Clone(), nil
}

func (m *Memory) SaveMask(index int, mask *raster.Mask) error {
	if m.SaveHook != nil {
		if err := m.SaveHook(index); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.frames) {
		return fmt.Errorf("frame %d out of range", index)
	}
	m.frames[index].mask = mask.Clone()
	m.saves++
	return nil
}

// Saves reports the number of successful SaveMask calls.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
