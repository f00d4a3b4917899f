// Package appstate is the editing session: it owns the frame cache and the
// tool state machine, and exposes the operations a UI drives with pointer
// and keyboard input. Run hosts the session in a shiny window.
package appstate

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/segpaint/internal/dataset"
	"github.com/example/segpaint/internal/framecache"
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/logging"
	"github.com/example/segpaint/internal/paint"
	"github.com/example/segpaint/internal/raster"
	"github.com/example/segpaint/internal/render"
)

const (
	MinClasses        = 1
	MaxClasses        = render.MaxClasses
	MinBrushWidth     = 1
	MaxBrushWidth     = 100
	DefaultBrushWidth = 5

	// EraseLabel is written by the right button.
	EraseLabel uint8 = 0
	// fallbackLabel is used when the pointer button is not recognised.
	fallbackLabel uint8 = 1
)

var (
	// ErrNoDataset is returned by New when no dataset was supplied.
	ErrNoDataset = errors.New("no dataset")
	// ErrGestureActive rejects operations that need the state machine Idle.
	ErrGestureActive = errors.New("gesture in progress")
	// ErrDatasetRange is returned for a dataset index that does not exist.
	ErrDatasetRange = errors.New("dataset index out of range")
)

// Notifier is told about completed saves and copies.
type Notifier interface {
	Save(path string)
	SaveAll(count int)
	Copy(detail string)
}

// Settings are the user-adjustable tool parameters.
type Settings struct {
	Tool    Tool
	Class   int
	Classes int
	Width   int
	Mode    render.Mode
}

// AppState is one editing session over one or more datasets. Methods are
// safe to call from multiple goroutines but are designed for a single UI
// thread.
type AppState struct {
	mu sync.Mutex

	datasets []dataset.Dataset
	active   int
	cache    *framecache.Cache
	table    render.ClassColorTable
	rule     geometry.FillRule

	frame   int
	tool    Tool
	classes int
	class   int
	width   int
	mode    render.Mode
	g       gesture

	classesSet bool

	log        *slog.Logger
	notifier   Notifier
	settingsFn func(Settings)

	updateCh  chan struct{}
	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithDatasets sets the datasets of the session. The first one is active.
func WithDatasets(ds ...dataset.Dataset) Option {
	return func(a *AppState) { a.datasets = append(a.datasets, ds...) }
}

// WithPalette sets the class color table used by Render.
func WithPalette(t render.ClassColorTable) Option { return func(a *AppState) { a.table = t } }

// WithTool sets the initial tool.
func WithTool(t Tool) Option { return func(a *AppState) { a.tool = t } }

// WithClasses sets the number of selectable classes, overriding any count a
// dataset declares.
func WithClasses(n int) Option {
	return func(a *AppState) {
		a.classes = n
		a.classesSet = true
	}
}

// WithClass sets the initially selected class.
func WithClass(label int) Option { return func(a *AppState) { a.class = label } }

// WithBrushWidth sets the initial brush diameter in pixels.
func WithBrushWidth(w int) Option { return func(a *AppState) { a.width = w } }

// WithViewMode sets the initial compositing mode.
func WithViewMode(m render.Mode) Option { return func(a *AppState) { a.mode = m } }

// WithFillRule sets how self-intersecting lassos are filled.
func WithFillRule(r geometry.FillRule) Option { return func(a *AppState) { a.rule = r } }

// WithLogger overrides the package logger.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.log = l } }

// WithNotifier registers desktop notifications for saves and copies.
func WithNotifier(n Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithSettingsListener registers a callback for when tool settings change.
func WithSettingsListener(fn func(Settings)) Option {
	return func(a *AppState) { a.settingsFn = fn }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates a session. The first dataset must be non-empty and its frames
// are loaded lazily.
func New(opts ...Option) (*AppState, error) {
	a := &AppState{
		table:    render.DefaultClassColors(),
		tool:     ToolLasso,
		class:    1,
		width:    DefaultBrushWidth,
		mode:     render.ModeOverlay,
		rule:     geometry.EvenOdd,
		g:        idle{},
		log:      logging.Logger(),
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if len(a.datasets) == 0 {
		return nil, ErrNoDataset
	}
	if err := dataset.Validate(a.datasets[0]); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", a.datasets[0].Name(), err)
	}
	if err := a.table.Validate(); err != nil {
		return nil, err
	}
	a.cache = framecache.New(a.datasets[0], framecache.WithLogger(a.log))
	a.seedClasses()
	a.width = a.clamp("brush width", a.width, MinBrushWidth, MaxBrushWidth)
	return a, nil
}

// seedClasses takes the class count from the active dataset unless one was
// configured explicitly.
func (a *AppState) seedClasses() {
	if !a.classesSet {
		if ci, ok := a.datasets[a.active].(dataset.ClassInfo); ok && ci.ClassCount() > 0 {
			a.classes = ci.ClassCount()
		}
	}
	if a.classes == 0 {
		a.classes = MinClasses
	}
	a.classes = a.clamp("class count", a.classes, MinClasses, MaxClasses)
	a.class = a.clamp("class", a.class, 1, a.classes)
}

func (a *AppState) clamp(setting string, v, lo, hi int) int {
	c := min(max(v, lo), hi)
	if c != v {
		a.log.Warn("setting out of range, clamped", "setting", setting, "requested", v, "value", c, "min", lo, "max", hi)
	}
	return c
}

// fillValue resolves the label a gesture writes.
func (a *AppState) fillValue(b Button) uint8 {
	switch b {
	case ButtonLeft:
		return uint8(a.class)
	case ButtonRight:
		return EraseLabel
	}
	a.log.Warn("unknown pointer button, using default label", "button", b, "label", fallbackLabel)
	return fallbackLabel
}

// OnPointerDown starts a gesture with the active tool. A press while a
// gesture is already running is ignored.
func (a *AppState) OnPointerDown(p geometry.Vertex, b Button) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.g.state() != Idle {
		a.log.Debug("pointer down ignored, gesture active", "gesture", a.g.state())
		return nil
	}
	value := a.fillValue(b)
	switch a.tool {
	case ToolBrush:
		base, err := a.cache.Read(a.frame)
		if err != nil {
			return err
		}
		s := paint.BeginStroke(base, a.width)
		s.Extend(geometry.Round(p), value)
		a.g = brushStroke{frame: a.frame, stroke: s, value: value}
	case ToolLasso:
		a.g = &lassoPath{frame: a.frame, vertices: []geometry.Vertex{p}, value: value}
	}
	a.notifyChanged()
	return nil
}

// OnPointerMove extends the running gesture. Without one it does nothing.
// The button is fixed at press time.
func (a *AppState) OnPointerMove(p geometry.Vertex, _ Button) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch g := a.g.(type) {
	case brushStroke:
		g.stroke.Extend(geometry.Round(p), g.value)
	case *lassoPath:
		g.add(p)
	default:
		return
	}
	a.notifyChanged()
}

// OnPointerUp finishes the running gesture and stages its result.
func (a *AppState) OnPointerUp(p geometry.Vertex, _ Button) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	g := a.g
	a.g = idle{}
	defer a.notifyChanged()
	switch g := g.(type) {
	case brushStroke:
		g.stroke.Extend(geometry.Round(p), g.value)
		return a.cache.Stage(g.frame, g.stroke.End())
	case *lassoPath:
		g.add(p)
		return a.fillLasso(g.frame, g.vertices, g.value)
	}
	return nil
}

// ApplyLasso fills a polygon collected outside the state machine.
func (a *AppState) ApplyLasso(vertices []geometry.Vertex, b Button) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.g.state() != Idle {
		return ErrGestureActive
	}
	defer a.notifyChanged()
	return a.fillLasso(a.frame, vertices, a.fillValue(b))
}

func (a *AppState) fillLasso(frame int, vertices []geometry.Vertex, value uint8) error {
	if len(vertices) < 3 {
		a.log.Debug("lasso too short, nothing filled", "vertices", len(vertices))
		return nil
	}
	base, err := a.cache.Read(frame)
	if err != nil {
		return err
	}
	return a.cache.Stage(frame, paint.ApplyLassoFill(base, vertices, value, a.rule))
}

// cancelGesture drops a running gesture without staging anything.
func (a *AppState) cancelGesture(reason string) {
	if a.g.state() == Idle {
		return
	}
	a.log.Info("gesture cancelled", "gesture", a.g.state(), "reason", reason)
	a.g = idle{}
}

// OnToolSelected switches tools, cancelling any gesture in progress.
func (a *AppState) OnToolSelected(t Tool) {
	a.mu.Lock()
	a.cancelGesture("tool changed")
	a.tool = t
	a.mu.Unlock()
	a.settingsChanged()
}

// OnClassSelected selects the label written by the left button.
func (a *AppState) OnClassSelected(label int) {
	a.mu.Lock()
	a.class = a.clamp("class", label, 1, a.classes)
	a.mu.Unlock()
	a.settingsChanged()
}

// OnClassCountChanged sets how many classes are selectable.
func (a *AppState) OnClassCountChanged(n int) {
	a.mu.Lock()
	a.classes = a.clamp("class count", n, MinClasses, MaxClasses)
	a.classesSet = true
	if a.class > a.classes {
		a.class = a.classes
	}
	a.mu.Unlock()
	a.settingsChanged()
}

// OnBrushWidthChanged sets the brush diameter used by the next stroke.
func (a *AppState) OnBrushWidthChanged(w int) {
	a.mu.Lock()
	a.width = a.clamp("brush width", w, MinBrushWidth, MaxBrushWidth)
	a.mu.Unlock()
	a.settingsChanged()
}

// OnViewModeChanged sets what Render composites.
func (a *AppState) OnViewModeChanged(m render.Mode) {
	a.mu.Lock()
	a.mode = m
	a.mu.Unlock()
	a.settingsChanged()
}

// OnFrameIndexChanged moves to another frame. Indices past either end wrap
// around. A gesture in progress is cancelled.
func (a *AppState) OnFrameIndexChanged(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelGesture("frame changed")
	n := a.cache.Len()
	switch {
	case n == 0:
		index = 0
	case index < 0:
		index = n - 1
	case index >= n:
		index = 0
	}
	a.frame = index
	a.notifyChanged()
}

// NextFrame advances one frame.
func (a *AppState) NextFrame() { a.OnFrameIndexChanged(a.Frame() + 1) }

// PrevFrame goes back one frame.
func (a *AppState) PrevFrame() { a.OnFrameIndexChanged(a.Frame() - 1) }

// OnDatasetSelected activates another dataset. Uncommitted edits of the
// previous dataset are dropped.
func (a *AppState) OnDatasetSelected(index int) error {
	a.mu.Lock()
	if index < 0 || index >= len(a.datasets) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDatasetRange, index)
	}
	ds := a.datasets[index]
	if err := dataset.Validate(ds); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("dataset %q: %w", ds.Name(), err)
	}
	a.cancelGesture("dataset changed")
	a.active = index
	a.cache.Reset(ds)
	a.frame = 0
	a.seedClasses()
	a.notifyChanged()
	a.mu.Unlock()
	a.settingsChanged()
	return nil
}

// OnSave commits the pending edit of a frame.
func (a *AppState) OnSave(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.cache.Commit(index); err != nil {
		return err
	}
	if a.notifier != nil {
		a.notifier.Save(a.maskLocation(index))
	}
	a.notifyChanged()
	return nil
}

// OnSaveAll commits every frame with a pending edit.
func (a *AppState) OnSaveAll() ([]framecache.CommitResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	results, err := a.cache.CommitAll()
	saved := 0
	for _, r := range results {
		if r.Err == nil {
			saved++
		}
	}
	if saved > 0 && a.notifier != nil {
		a.notifier.SaveAll(saved)
	}
	a.notifyChanged()
	return results, err
}

// OnDiscard drops the pending edit of a frame. A gesture on that frame is
// cancelled first.
func (a *AppState) OnDiscard(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.g.state() != Idle && a.g.on() == index {
		a.cancelGesture("frame discarded")
	}
	if err := a.cache.Discard(index); err != nil {
		return err
	}
	a.notifyChanged()
	return nil
}

// maskLocation names where a frame's mask is stored for notifications.
func (a *AppState) maskLocation(index int) string {
	ds := a.cache.Dataset()
	if mp, ok := ds.(interface{ MaskPath(int) string }); ok {
		return mp.MaskPath(index)
	}
	return ds.FrameName(index)
}

// Render composites the current frame. While a brush stroke is being drawn
// the in-progress mask is shown.
func (a *AppState) Render() (*render.Buffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	img, err := a.cache.Image(a.frame)
	if err != nil {
		return nil, err
	}
	var m *raster.Mask
	if g, ok := a.g.(brushStroke); ok && g.frame == a.frame {
		m = g.stroke.Mask()
	} else if m, err = a.cache.Read(a.frame); err != nil {
		return nil, err
	}
	return render.Render(img, m, a.table, a.mode)
}

// ModifiedFlags reports which frames of the active dataset have pending
// edits.
func (a *AppState) ModifiedFlags() []bool { return a.cache.ModifiedFlags() }

// Frame returns the current frame index.
func (a *AppState) Frame() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

// Dataset returns the active dataset.
func (a *AppState) Dataset() dataset.Dataset { return a.cache.Dataset() }

// Datasets returns every dataset of the session.
func (a *AppState) Datasets() []dataset.Dataset {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]dataset.Dataset(nil), a.datasets...)
}

// Settings returns the current tool settings.
func (a *AppState) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settingsLocked()
}

func (a *AppState) settingsLocked() Settings {
	return Settings{Tool: a.tool, Class: a.class, Classes: a.classes, Width: a.width, Mode: a.mode}
}

// LassoVertices returns the outline of a lasso being drawn, or nil.
func (a *AppState) LassoVertices() []geometry.Vertex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if g, ok := a.g.(*lassoPath); ok {
		return append([]geometry.Vertex(nil), g.vertices...)
	}
	return nil
}

// ClassColor returns the display color of a label.
func (a *AppState) ClassColor(label int) render.RGB {
	return a.table.Color(uint8(label))
}

func (a *AppState) settingsChanged() {
	a.mu.Lock()
	fn := a.settingsFn
	s := a.settingsLocked()
	a.notifyChanged()
	a.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// notifyChanged requests a repaint from a running window.
func (a *AppState) notifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}
