// Package logging provides the diagnostic channel the spec's fail-open
// policy writes to: every peripheral failure (catalog parse, ledger
// write, spatial map update, lesson recording, hash I/O) is logged here
// and never propagated to the caller.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

var base = newBase(os.Stderr)

func newBase(w io.Writer) zerolog.Logger {
	var writer io.Writer = w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		writer = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// SetVerbose raises or lowers the global log level. Verbose sessions see
// Debug and up; quiet sessions see Warn and up, matching the spec's
// instruction that fail-open diagnostics should not spam a well-behaved
// session.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// Component returns a logger tagged with a component name, mirroring
// the "cmp" field convention used throughout this codebase.
func Component(name string) zerolog.Logger {
	return base.With().Str("cmp", name).Logger()
}
