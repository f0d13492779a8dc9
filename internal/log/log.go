// Package log configures the process-wide structured logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs a tinted stderr logger as the slog default. Verbose
// switches on debug records, including the per-request API log lines.
// Logs always go to stderr so structured stdout output stays clean.
func Setup(verbose bool) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, verbose, isatty.IsTerminal(os.Stderr.Fd()))))
}

func newHandler(w io.Writer, verbose, tty bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !tty,
	})
}
