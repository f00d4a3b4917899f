// Package logging holds the process-wide structured logger used by the
// editor packages. It is silent until a host installs a logger.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// SetLogger installs l for every editor package. Passing nil restores the
// silent default.
//
// Levels in use:
//   - [slog.LevelDebug]: per-gesture details (stamps, polygon size)
//   - [slog.LevelInfo]: saves, dataset loads
//   - [slog.LevelWarn]: no-op saves or discards, clamped settings, missing masks
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
