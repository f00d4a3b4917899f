package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/example/segpaint/internal/render"
)

// renderCmd writes the composited view of one frame.
type renderCmd struct {
	*root
	fs        *flag.FlagSet
	frame     int
	view      string
	output    string
	clipboard bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cmd := &renderCmd{root: r.subcommand("render"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.IntVar(&cmd.frame, "frame", 1, "frame to render (1-based)")
	fs.StringVar(&cmd.view, "view", "", "view mode (overlay, image, mask); defaults to the session view")
	fs.StringVar(&cmd.output, "o", "", "output PNG file, - for stdout")
	fs.BoolVar(&cmd.clipboard, "clipboard", false, "also copy the view to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.output == "" && !cmd.clipboard {
		return nil, fmt.Errorf("render: an output file (-o) or -clipboard is required")
	}
	return cmd, nil
}

func (c *renderCmd) Run() error {
	st, err := c.session()
	if err != nil {
		return err
	}
	if c.view != "" {
		m, err := render.ParseMode(c.view)
		if err != nil {
			return err
		}
		st.OnViewModeChanged(m)
	}
	st.OnFrameIndexChanged(c.frame - 1)
	if c.output != "" {
		view, err := st.Render()
		if err != nil {
			return fmt.Errorf("render frame %d: %w", c.frame, err)
		}
		if err := writePNG(c.output, c.out(), view); err != nil {
			return err
		}
	}
	if c.clipboard {
		if err := st.CopyView(); err != nil {
			return err
		}
	}
	return nil
}

// writePNG encodes b to path, or to stdout when path is "-".
func writePNG(path string, stdout io.Writer, b *render.Buffer) error {
	if path == "-" {
		return png.Encode(stdout, b.RGBA())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, b.RGBA()); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
