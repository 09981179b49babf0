// Package output creates termenv outputs that honor NO_COLOR and the
// selected progress reporter.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/fake/internal/core/domain"
)

// Profile returns the color profile for mode.
// NO_COLOR always wins. Linear output sticks to the 16 ANSI colors that CI
// log viewers understand; everything else uses what the terminal reports.
func Profile(mode domain.OutputMode) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if mode == domain.OutputModeLinear {
		return termenv.ANSI
	}
	return termenv.EnvColorProfile()
}

// New creates an output for w styled for mode. A nil w writes to stderr.
func New(w io.Writer, mode domain.OutputMode, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(Profile(mode)),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
