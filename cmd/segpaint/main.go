package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/example/segpaint/internal/appstate"
	"github.com/example/segpaint/internal/config"
	"github.com/example/segpaint/internal/dataset"
	"github.com/example/segpaint/internal/logging"
	"github.com/example/segpaint/internal/notify"
	"github.com/example/segpaint/internal/palette"
	"github.com/example/segpaint/internal/render"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type root struct {
	fs         *flag.FlagSet
	program    string
	state      *appstate.AppState
	notifier   *notify.Notifier
	config     *config.Config
	saveAlerts bool
	copyAlerts bool
	verbose    bool

	paletteName string
	datasets    stringList
	classes     int
	width       int
	tool        string
	view        string

	stdout io.Writer
	stderr io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	c := *r
	c.fs = nil
	c.program = program
	return &c
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("segpaint", flag.ExitOnError),
		program:  "segpaint",
		notifier: notify.New(prefs),
		config:   cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", envOr(notify.EventSave, cfg.Notify.Save), "show a desktop notification after saving masks")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", envOr(notify.EventCopy, cfg.Notify.Copy), "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.verbose, "verbose", false, "log editor events to stderr")
	r.fs.Var(&r.datasets, "dataset", "dataset directory (may be specified multiple times)")

	// Precedence: CLI > Env > Config > Default
	// Empty or zero values fall back in session().
	r.fs.StringVar(&r.paletteName, "palette", "", "class color palette (default, okabe_ito, pastel, a config palette or a file)")
	r.fs.IntVar(&r.classes, "classes", 0, "number of classes (1-10)")
	r.fs.IntVar(&r.width, "width", 0, "brush width in pixels (1-100)")
	r.fs.StringVar(&r.tool, "tool", "", "initial tool (lasso, brush)")
	r.fs.StringVar(&r.view, "view", "", "initial view (overlay, image, mask)")
	r.fs.Usage = usageFunc(r)
	return r
}

// envOr resolves a notification toggle from the environment, falling back
// to the configured value.
func envOr(event notify.Event, fallback bool) bool {
	if v, ok := notify.EnabledFromEnv(event); ok {
		return v
	}
	return fallback
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventSaveAll, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	if r.verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "stroke":
		cmd, err = parseStrokeCmd(subArgs, r)
	case "lasso":
		cmd, err = parseLassoCmd(subArgs, r)
	case "frames":
		cmd, err = parseFramesCmd(subArgs, r)
	case "palette":
		cmd, err = parsePaletteCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// resolvePalette picks the palette by flag, then SEGPAINT_PALETTE, then the
// config file.
func (r *root) resolvePalette() (*palette.Palette, error) {
	name := r.paletteName
	if name == "" {
		name = os.Getenv("SEGPAINT_PALETTE")
	}
	cfg := r.cfg()
	if name == "" {
		name = cfg.Palette
	}
	p, err := cfg.LookupPalette(palette.NewLoader(), name)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return p, nil
}

func (r *root) cfg() *config.Config {
	if r.config == nil {
		r.config = config.New()
	}
	return r.config
}

func (r *root) datasetRoots() []string {
	if len(r.datasets) > 0 {
		return r.datasets
	}
	return r.cfg().Datasets
}

// openDatasets opens every configured dataset directory.
func (r *root) openDatasets() ([]dataset.Dataset, error) {
	roots := r.datasetRoots()
	if len(roots) == 0 {
		return nil, errors.New("no dataset: pass -dataset DIR or set dataset in the config file")
	}
	out := make([]dataset.Dataset, 0, len(roots))
	for _, dir := range roots {
		d, err := dataset.Open(dir, dataset.WithRescaleBinary(r.cfg().RescaleBinary), dataset.WithLogger(logging.Logger()))
		if err != nil {
			return nil, fmt.Errorf("open dataset %s: %w", dir, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// session returns the shared editing session, creating it on first use.
func (r *root) session(extra ...appstate.Option) (*appstate.AppState, error) {
	if r.state != nil {
		return r.state, nil
	}
	opts, err := r.sessionOptions()
	if err != nil {
		return nil, err
	}
	ds, err := r.openDatasets()
	if err != nil {
		return nil, err
	}
	opts = append(opts, appstate.WithDatasets(ds...), appstate.WithLogger(logging.Logger()))
	if r.notifier != nil {
		opts = append(opts, appstate.WithNotifier(r.notifier))
	}
	st, err := appstate.New(append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	r.state = st
	return st, nil
}

// sessionOptions maps flags and the config file onto session options.
func (r *root) sessionOptions() ([]appstate.Option, error) {
	cfg := r.cfg()
	p, err := r.resolvePalette()
	if err != nil {
		return nil, err
	}
	opts := []appstate.Option{appstate.WithPalette(p.Table())}

	toolName := firstNonEmpty(r.tool, cfg.Tool)
	if toolName != "" {
		t, err := appstate.ParseTool(toolName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, appstate.WithTool(t))
	}
	viewName := firstNonEmpty(r.view, cfg.View)
	if viewName != "" {
		m, err := render.ParseMode(viewName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, appstate.WithViewMode(m))
	}
	if r.classes > 0 {
		opts = append(opts, appstate.WithClasses(r.classes))
	} else if cfg.Classes > 1 {
		opts = append(opts, appstate.WithClasses(cfg.Classes))
	}
	switch {
	case r.width > 0:
		opts = append(opts, appstate.WithBrushWidth(r.width))
	case cfg.BrushWidth > 0:
		opts = append(opts, appstate.WithBrushWidth(cfg.BrushWidth))
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *root) out() io.Writer {
	if r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("segpaint: ")
}
