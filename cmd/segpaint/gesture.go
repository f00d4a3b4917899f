package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/segpaint/internal/appstate"
	"github.com/example/segpaint/internal/geometry"
)

// parsePoint reads an "x,y" pixel position.
func parsePoint(s string) (geometry.Vertex, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Vertex{}, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Vertex{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Vertex{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geometry.Vertex{X: x, Y: y}, nil
}

func parsePoints(args []string) ([]geometry.Vertex, error) {
	pts := make([]geometry.Vertex, 0, len(args))
	for _, a := range args {
		p, err := parsePoint(a)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// paintFlags are shared by the headless stroke and lasso commands.
type paintFlags struct {
	frame  int
	class  int
	erase  bool
	noSave bool
}

func (p *paintFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&p.frame, "frame", 1, "frame to edit (1-based)")
	fs.IntVar(&p.class, "class", 1, "class label to paint")
	fs.BoolVar(&p.erase, "erase", false, "erase to background instead of painting")
	fs.BoolVar(&p.noSave, "no-save", false, "leave the edit pending instead of saving it")
}

func (p *paintFlags) button() appstate.Button {
	if p.erase {
		return appstate.ButtonRight
	}
	return appstate.ButtonLeft
}

// prepare selects the frame and class on st.
func (p *paintFlags) prepare(st *appstate.AppState, tool appstate.Tool) {
	st.OnFrameIndexChanged(p.frame - 1)
	st.OnToolSelected(tool)
	st.OnClassSelected(p.class)
}

// finish saves the edited frame unless asked not to.
func (p *paintFlags) finish(r *root, st *appstate.AppState) error {
	if p.noSave {
		return nil
	}
	frame := st.Frame()
	if err := st.OnSave(frame); err != nil {
		return fmt.Errorf("save frame %d: %w", frame+1, err)
	}
	fmt.Fprintf(r.out(), "saved %s\n", st.Dataset().FrameName(frame))
	return nil
}

// strokeCmd paints a brush stroke without opening a window.
type strokeCmd struct {
	*root
	fs *flag.FlagSet
	paintFlags
	width  int
	points []geometry.Vertex
}

func (s *strokeCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseStrokeCmd(args []string, r *root) (*strokeCmd, error) {
	fs := flag.NewFlagSet("stroke", flag.ExitOnError)
	cmd := &strokeCmd{root: r.subcommand("stroke"), fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.paintFlags.register(fs)
	fs.IntVar(&cmd.width, "width", 0, "brush width in pixels; defaults to the session width")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: cmd}
	}
	pts, err := parsePoints(fs.Args())
	if err != nil {
		return nil, err
	}
	cmd.points = pts
	return cmd, nil
}

func (s *strokeCmd) Run() error {
	st, err := s.session()
	if err != nil {
		return err
	}
	s.prepare(st, appstate.ToolBrush)
	if s.width > 0 {
		st.OnBrushWidthChanged(s.width)
	}
	b := s.button()
	if err := st.OnPointerDown(s.points[0], b); err != nil {
		return err
	}
	for _, p := range s.points[1:] {
		st.OnPointerMove(p, b)
	}
	if err := st.OnPointerUp(s.points[len(s.points)-1], b); err != nil {
		return err
	}
	return s.finish(s.root, st)
}

// lassoCmd fills a polygon without opening a window.
type lassoCmd struct {
	*root
	fs *flag.FlagSet
	paintFlags
	points []geometry.Vertex
}

func (l *lassoCmd) FlagSet() *flag.FlagSet {
	return l.fs
}

func parseLassoCmd(args []string, r *root) (*lassoCmd, error) {
	fs := flag.NewFlagSet("lasso", flag.ExitOnError)
	cmd := &lassoCmd{root: r.subcommand("lasso"), fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.paintFlags.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: cmd}
	}
	pts, err := parsePoints(fs.Args())
	if err != nil {
		return nil, err
	}
	cmd.points = pts
	return cmd, nil
}

var errShortLasso = errors.New("lasso needs at least three points")

func (l *lassoCmd) Run() error {
	if len(l.points) < 3 {
		return errShortLasso
	}
	st, err := l.session()
	if err != nil {
		return err
	}
	l.prepare(st, appstate.ToolLasso)
	if err := st.ApplyLasso(l.points, l.button()); err != nil {
		return err
	}
	return l.finish(l.root, st)
}
