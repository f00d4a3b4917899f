package main

import (
	"flag"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/example/segpaint/internal/dataset"
	"github.com/example/segpaint/internal/palette"
	"github.com/example/segpaint/internal/render"
)

type framesCmd struct {
	*root
	fs *flag.FlagSet
}

func parseFramesCmd(args []string, r *root) (*framesCmd, error) {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	cmd := &framesCmd{root: r.subcommand("frames"), fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *framesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *framesCmd) Run() error {
	sets, err := c.openDatasets()
	if err != nil {
		return err
	}
	for i, ds := range sets {
		fmt.Fprintf(c.out(), "dataset %d: %s (%d frames)\n", i+1, ds.Name(), ds.Len())
		listFrames(c.root, ds, nil)
	}
	return nil
}

// listFrames prints one line per frame: index, mask marker, name. modified
// marks frames with pending edits when non-nil.
func listFrames(r *root, ds dataset.Dataset, modified []bool) {
	w := tabwriter.NewWriter(r.out(), 0, 4, 2, ' ', 0)
	hm, canCheck := ds.(interface{ HasMask(int) bool })
	for i := 0; i < ds.Len(); i++ {
		mask := "?"
		if canCheck {
			mask = "-"
			if hm.HasMask(i) {
				mask = "mask"
			}
		}
		mod := ""
		if i < len(modified) && modified[i] {
			mod = "*"
		}
		fmt.Fprintf(w, "%4d\t%s\t%s\t%s\n", i+1, mask, ds.FrameName(i), mod)
	}
	w.Flush()
}

type paletteCmd struct {
	*root
	fs   *flag.FlagSet
	list bool
}

func parsePaletteCmd(args []string, r *root) (*paletteCmd, error) {
	fs := flag.NewFlagSet("palette", flag.ExitOnError)
	cmd := &paletteCmd{root: r.subcommand("palette"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.BoolVar(&cmd.list, "list", false, "list available palette names instead")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *paletteCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *paletteCmd) Run() error {
	if c.list {
		for _, name := range palette.Builtin() {
			fmt.Fprintln(c.out(), name)
		}
		var names []string
		for name := range c.cfg().Palettes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(c.out(), "%s (config)\n", name)
		}
		return nil
	}
	p, err := c.resolvePalette()
	if err != nil {
		return err
	}
	var names []string
	if sets, err := c.openDatasets(); err == nil {
		if ci, ok := sets[0].(dataset.ClassInfo); ok {
			names = ci.ClassNames()
		}
	}
	fmt.Fprintf(c.out(), "palette %s\n", p.Name)
	w := tabwriter.NewWriter(c.out(), 0, 4, 2, ' ', 0)
	for i := 0; i < render.MaxClasses; i++ {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(w, "class%d\t%s\t%s\n", i+1, palette.Hex(p.Colors[i]), name)
	}
	return w.Flush()
}
