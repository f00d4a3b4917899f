package main

import (
	"flag"
	"fmt"
)

// editCmd opens the editor window.
type editCmd struct {
	*root
	fs    *flag.FlagSet
	frame int
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	cmd := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.IntVar(&cmd.frame, "frame", 1, "frame to open (1-based)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (e *editCmd) Run() error {
	st, err := e.session()
	if err != nil {
		return err
	}
	st.OnFrameIndexChanged(e.frame - 1)
	st.Run()
	if st.Status().AnyModified {
		fmt.Fprintln(e.errOut(), "warning: unsaved edits were discarded")
	}
	return nil
}
