// Package logging builds the bridge's structured logger. The plain text
// handler path mirrors the reference bridge's slog.NewTextHandler usage;
// the colorized terminal path wires in lmittmann/tint for interactive
// sessions, as DMRHub does.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Options configures logger construction.
type Options struct {
	Verbose bool
	Color   bool // colorized tint handler instead of plain slog.TextHandler
}

// New builds a *slog.Logger per opts.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Color {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
