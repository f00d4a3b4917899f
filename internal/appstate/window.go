package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"
	"unicode"

	"github.com/example/segpaint/internal/framecache"
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/render"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

type shortcutList []KeyShortcut

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

type paintState struct {
	width, height int
	zoom          float64
	status        Status
	lasso         []geometry.Vertex
	cursor        *geometry.Vertex
	message       string
	messageUntil  time.Time
}

// Main runs the editor window on s until it is closed.
func (a *AppState) Main(s screen.Screen) {
	frameSize := a.frameSize()
	width, height := frameSize.X, frameSize.Y+bottomHeight
	if width < 480 {
		width = 480
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "segpaint"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var message string
	var messageUntil time.Time
	var cursor *geometry.Vertex
	var pressed Button
	zoom := fitZoom(frameSize, width, height)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			a.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	say := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		log.Print(message)
		messageUntil = time.Now().Add(2 * time.Second)
	}
	report := func(op string, err error) {
		if err == nil {
			return
		}
		if errors.Is(err, framecache.ErrNotModified) {
			say("%s: nothing to do", op)
			return
		}
		say("%s: %v", op, err)
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys shortcutList, fn func()) {
		actions[name] = fn
		for _, sc := range keys {
			keyboardAction[sc] = name
		}
	}

	register("brush", shortcutList{{Rune: 'b'}}, func() { a.OnToolSelected(ToolBrush) })
	register("lasso", shortcutList{{Rune: 'l'}}, func() { a.OnToolSelected(ToolLasso) })
	for i := 1; i <= MaxClasses; i++ {
		r := rune('0' + i%10)
		label := i
		register(fmt.Sprintf("class%d", label), shortcutList{{Rune: r}}, func() { a.OnClassSelected(label) })
	}
	register("wider", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { a.OnBrushWidthChanged(a.Settings().Width + 1) })
	register("narrower", shortcutList{{Rune: '-'}}, func() { a.OnBrushWidthChanged(a.Settings().Width - 1) })
	register("view", shortcutList{{Rune: 'v'}}, func() { a.OnViewModeChanged(a.Settings().Mode.Next()) })
	register("next", shortcutList{{Code: key.CodeRightArrow}}, func() {
		a.NextFrame()
		zoom = fitZoom(a.frameSize(), width, height)
	})
	register("prev", shortcutList{{Code: key.CodeLeftArrow}}, func() {
		a.PrevFrame()
		zoom = fitZoom(a.frameSize(), width, height)
	})
	register("save", shortcutList{{Rune: 's'}, {Rune: 's', Modifiers: key.ModControl}}, func() {
		frame := a.Frame()
		if err := a.OnSave(frame); err != nil {
			report("save", err)
			return
		}
		say("saved frame %d", frame+1)
	})
	register("saveall", shortcutList{{Rune: 'a'}}, func() {
		results, err := a.OnSaveAll()
		if err != nil {
			report("save all", err)
			return
		}
		if len(results) == 0 {
			say("save all: nothing to do")
			return
		}
		say("saved %d frames", len(results))
	})
	register("discard", shortcutList{{Rune: 'd'}}, func() {
		frame := a.Frame()
		if err := a.OnDiscard(frame); err != nil {
			report("discard", err)
			return
		}
		say("discarded edits of frame %d", frame+1)
	})
	register("copy", shortcutList{{Rune: 'c'}, {Rune: 'c', Modifiers: key.ModControl}}, func() {
		if err := a.CopyView(); err != nil {
			report("copy", err)
			return
		}
		say("view copied to clipboard")
	})
	register("quit", shortcutList{{Rune: 'q'}, {Code: key.CodeEscape}}, func() {
		w.Send(lifecycle.Event{To: lifecycle.StageDead})
	})

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				if a.Status().AnyModified {
					log.Print("closing with unsaved edits")
				}
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			zoom = fitZoom(a.frameSize(), width, height)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				zoom:         zoom,
				status:       a.Status(),
				lasso:        a.LassoVertices(),
				cursor:       cursor,
				message:      message,
				messageUntil: messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Code: e.Code, Modifiers: e.Modifiers &^ key.ModShift}
			if e.Rune > 0 {
				ks.Code = key.CodeUnknown
			}
			action, ok := keyboardAction[ks]
			if !ok {
				continue
			}
			actions[action]()
			w.Send(paint.Event{})
		case mouse.Event:
			dst := imageRect(a.frameSize(), zoom)
			x, y := toImage(dst, zoom, e.X, e.Y)
			v := geometry.Vertex{X: x, Y: y}
			cursor = &v
			switch e.Direction {
			case mouse.DirPress:
				if int(e.Y) >= height-bottomHeight {
					continue
				}
				pressed = buttonOf(e.Button)
				if err := a.OnPointerDown(v, pressed); err != nil {
					report("draw", err)
				}
			case mouse.DirRelease:
				if err := a.OnPointerUp(v, pressed); err != nil {
					report("draw", err)
				}
				pressed = ButtonNone
			case mouse.DirNone:
				a.OnPointerMove(v, pressed)
			}
			w.Send(paint.Event{})
		case error:
			log.Print(e)
		}
	}
}

func buttonOf(b mouse.Button) Button {
	switch b {
	case mouse.ButtonLeft:
		return ButtonLeft
	case mouse.ButtonMiddle:
		return ButtonMiddle
	case mouse.ButtonRight:
		return ButtonRight
	}
	return ButtonNone
}

// frameSize returns the pixel size of the current frame.
func (a *AppState) frameSize() image.Point {
	img, err := a.cache.Image(a.Frame())
	if err != nil {
		return image.Pt(640, 480)
	}
	return image.Pt(img.Width, img.Height)
}

func (a *AppState) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	drawBackdrop(dst)
	if ctx.Err() != nil {
		return
	}

	view, err := a.Render()
	if err != nil {
		log.Printf("render: %v", err)
	} else {
		img := view.RGBA()
		rect := imageRect(image.Pt(view.Width, view.Height), st.zoom)
		xdraw.NearestNeighbor.Scale(dst, rect, img, img.Bounds(), draw.Src, nil)

		if len(st.lasso) > 0 {
			pts := make([]image.Point, len(st.lasso))
			for i, v := range st.lasso {
				pts[i] = toScreen(rect, st.zoom, v.X, v.Y)
			}
			drawPolyline(dst, pts)
		}
		if st.cursor != nil && st.status.Tool == ToolBrush {
			c := toScreen(rect, st.zoom, st.cursor.X, st.cursor.Y)
			drawCircle(dst, c.X, c.Y, int(float64(st.status.Width)*st.zoom/2), cursorColor)
		}
	}
	if ctx.Err() != nil {
		return
	}

	text := st.status.String()
	if st.message != "" && time.Now().Before(st.messageUntil) {
		text = st.message
	}
	drawStatusBar(dst, st.width, st.height, text, a.ClassColor(st.status.Class), st.status.Mode)

	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawStatusBar(dst *image.RGBA, width, height int, text string, class render.RGB, mode render.Mode) {
	bar := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, bar, &image.Uniform{color.RGBA{230, 230, 230, 255}}, image.Point{}, draw.Src)
	swatch := image.Rect(4, bar.Min.Y+4, 4+bottomHeight-8, bar.Max.Y-4)
	draw.Draw(dst, swatch, &image.Uniform{class.RGBA()}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	d.Dot = fixed.P(swatch.Max.X+6, bar.Max.Y-7)
	d.DrawString(text)
	if mode != render.ModeOverlay {
		label := mode.String()
		d.Dot = fixed.P(width-d.MeasureString(label).Ceil()-6, bar.Max.Y-7)
		d.DrawString(label)
	}
}
