package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/segpaint/internal/appstate"
	"github.com/example/segpaint/internal/framecache"
	"github.com/example/segpaint/internal/geometry"
	"github.com/example/segpaint/internal/render"
)

type replCommand struct {
	usage string
	help  string
	run   func(c *interactiveCmd, args []string) error
}

// replOrder fixes the order of the help listing.
var replOrder = []string{
	"status", "tool", "class", "classes", "width", "view",
	"frame", "next", "prev", "frames", "dataset",
	"down", "move", "up", "lasso",
	"save", "saveall", "discard", "render", "copy", "help", "exit",
}

var replCommands = map[string]replCommand{
	"status": {"status", "show the session state", func(c *interactiveCmd, _ []string) error {
		fmt.Fprintln(c.out(), c.st.Status())
		return nil
	}},
	"tool": {"tool lasso|brush", "select the tool", func(c *interactiveCmd, args []string) error {
		if len(args) != 1 {
			return errArgs
		}
		t, err := appstate.ParseTool(args[0])
		if err != nil {
			return err
		}
		c.st.OnToolSelected(t)
		return nil
	}},
	"class":   {"class N", "select the class to paint", intArg(func(c *interactiveCmd, n int) { c.st.OnClassSelected(n) })},
	"classes": {"classes N", "set the number of classes", intArg(func(c *interactiveCmd, n int) { c.st.OnClassCountChanged(n) })},
	"width":   {"width N", "set the brush width", intArg(func(c *interactiveCmd, n int) { c.st.OnBrushWidthChanged(n) })},
	"view": {"view [overlay|image|mask]", "set or cycle the view mode", func(c *interactiveCmd, args []string) error {
		if len(args) == 0 {
			c.st.OnViewModeChanged(c.st.Settings().Mode.Next())
			return nil
		}
		m, err := render.ParseMode(args[0])
		if err != nil {
			return err
		}
		c.st.OnViewModeChanged(m)
		return nil
	}},
	"frame": {"frame N", "go to frame N (1-based, wraps)", intArg(func(c *interactiveCmd, n int) { c.st.OnFrameIndexChanged(n - 1) })},
	"next": {"next", "go to the next frame", func(c *interactiveCmd, _ []string) error {
		c.st.NextFrame()
		return nil
	}},
	"prev": {"prev", "go to the previous frame", func(c *interactiveCmd, _ []string) error {
		c.st.PrevFrame()
		return nil
	}},
	"frames": {"frames", "list frames; * marks pending edits", func(c *interactiveCmd, _ []string) error {
		listFrames(c.root, c.st.Dataset(), c.st.ModifiedFlags())
		return nil
	}},
	"dataset": {"dataset [N]", "list datasets or switch to dataset N", func(c *interactiveCmd, args []string) error {
		if len(args) == 0 {
			active := c.st.Dataset()
			for i, ds := range c.st.Datasets() {
				marker := " "
				if ds == active {
					marker = "*"
				}
				fmt.Fprintf(c.out(), "%s %d %s\n", marker, i+1, ds.Name())
			}
			return nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return c.st.OnDatasetSelected(n - 1)
	}},
	"down": {"down X,Y [left|middle|right]", "press a pointer button", func(c *interactiveCmd, args []string) error {
		p, b, err := pointerArgs(args)
		if err != nil {
			return err
		}
		c.pressed = b
		return c.st.OnPointerDown(p, b)
	}},
	"move": {"move X,Y", "move the pointer", func(c *interactiveCmd, args []string) error {
		p, _, err := pointerArgs(args)
		if err != nil {
			return err
		}
		c.st.OnPointerMove(p, c.pressed)
		return nil
	}},
	"up": {"up X,Y", "release the pointer button", func(c *interactiveCmd, args []string) error {
		p, _, err := pointerArgs(args)
		if err != nil {
			return err
		}
		b := c.pressed
		c.pressed = appstate.ButtonNone
		return c.st.OnPointerUp(p, b)
	}},
	"lasso": {"lasso [left|right] X,Y X,Y X,Y ...", "fill a polygon on the current frame", func(c *interactiveCmd, args []string) error {
		b := appstate.ButtonLeft
		if len(args) > 0 && !strings.Contains(args[0], ",") {
			var err error
			if b, err = parseButton(args[0]); err != nil {
				return err
			}
			args = args[1:]
		}
		pts, err := parsePoints(args)
		if err != nil {
			return err
		}
		return c.st.ApplyLasso(pts, b)
	}},
	"save": {"save [N]", "save the current frame or frame N", frameArg(func(c *interactiveCmd, i int) error {
		if err := c.st.OnSave(i); err != nil {
			return err
		}
		fmt.Fprintf(c.out(), "saved frame %d\n", i+1)
		return nil
	})},
	"saveall": {"saveall", "save every frame with pending edits", func(c *interactiveCmd, _ []string) error {
		results, err := c.st.OnSaveAll()
		for _, r := range results {
			if r.Err == nil {
				fmt.Fprintf(c.out(), "saved frame %d\n", r.Frame+1)
			}
		}
		return err
	}},
	"discard": {"discard [N]", "drop the pending edit of the current frame or frame N", frameArg(func(c *interactiveCmd, i int) error {
		return c.st.OnDiscard(i)
	})},
	"render": {"render FILE", "write the current view as PNG", func(c *interactiveCmd, args []string) error {
		if len(args) != 1 {
			return errArgs
		}
		view, err := c.st.Render()
		if err != nil {
			return err
		}
		return writePNG(args[0], c.out(), view)
	}},
	"copy": {"copy", "copy the current view to the clipboard", func(c *interactiveCmd, _ []string) error {
		return c.st.CopyView()
	}},
}

var errArgs = errors.New("wrong number of arguments")

func intArg(fn func(c *interactiveCmd, n int)) func(*interactiveCmd, []string) error {
	return func(c *interactiveCmd, args []string) error {
		if len(args) != 1 {
			return errArgs
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		fn(c, n)
		return nil
	}
}

// frameArg resolves an optional 1-based frame argument, defaulting to the
// current frame.
func frameArg(fn func(c *interactiveCmd, index int) error) func(*interactiveCmd, []string) error {
	return func(c *interactiveCmd, args []string) error {
		index := c.st.Frame()
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			index = n - 1
		}
		return fn(c, index)
	}
}

func parseButton(s string) (appstate.Button, error) {
	switch strings.ToLower(s) {
	case "left", "l", "1":
		return appstate.ButtonLeft, nil
	case "middle", "m", "2":
		return appstate.ButtonMiddle, nil
	case "right", "r", "3":
		return appstate.ButtonRight, nil
	}
	return appstate.ButtonNone, fmt.Errorf("unknown button %q", s)
}

func pointerArgs(args []string) (geometry.Vertex, appstate.Button, error) {
	if len(args) < 1 || len(args) > 2 {
		return geometry.Vertex{}, appstate.ButtonNone, errArgs
	}
	p, err := parsePoint(args[0])
	if err != nil {
		return geometry.Vertex{}, appstate.ButtonNone, err
	}
	b := appstate.ButtonLeft
	if len(args) == 2 {
		if b, err = parseButton(args[1]); err != nil {
			return geometry.Vertex{}, appstate.ButtonNone, err
		}
	}
	return p, b, nil
}

// interactiveCmd drives a session from text commands.
type interactiveCmd struct {
	*root
	fs      *flag.FlagSet
	execs   stringList
	in      io.Reader
	st      *appstate.AppState
	pressed appstate.Button
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	cmd := &interactiveCmd{root: r.subcommand("interactive"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.Var(&cmd.execs, "e", "execute a command and exit (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *interactiveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *interactiveCmd) Run() error {
	st, err := c.session()
	if err != nil {
		return err
	}
	c.st = st

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			if done {
				break
			}
		}
		return nil
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprintln(c.out(), "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out(), "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			c.report(err)
		}
		if done {
			break
		}
	}
	if c.st.Status().AnyModified {
		fmt.Fprintln(c.errOut(), "warning: leaving with unsaved edits")
	}
	return scanner.Err()
}

// executeLine runs one command. done is true when the session should end.
func (c *interactiveCmd) executeLine(line string) (done bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}
	name := strings.ToLower(args[0])
	switch name {
	case "exit", "quit":
		return true, nil
	case "help", "?":
		c.printHelp()
		return false, nil
	}
	cmd, ok := replCommands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q", args[0])
	}
	if err := cmd.run(c, args[1:]); err != nil {
		if errors.Is(err, errArgs) {
			return false, fmt.Errorf("usage: %s", cmd.usage)
		}
		return false, err
	}
	return false, nil
}

func (c *interactiveCmd) report(err error) {
	if errors.Is(err, framecache.ErrNotModified) {
		fmt.Fprintln(c.errOut(), "nothing to do")
		return
	}
	fmt.Fprintln(c.errOut(), err)
}

func (c *interactiveCmd) printHelp() {
	for _, name := range replOrder {
		switch name {
		case "help":
			fmt.Fprintf(c.out(), "  %-36s %s\n", "help", "show this list")
		case "exit":
			fmt.Fprintf(c.out(), "  %-36s %s\n", "exit", "leave the prompt")
		default:
			cmd := replCommands[name]
			fmt.Fprintf(c.out(), "  %-36s %s\n", cmd.usage, cmd.help)
		}
	}
}
