// Package detector picks the progress reporter for the current environment.
package detector

import (
	"os"

	"go.trai.ch/fake/internal/core/domain"
	"golang.org/x/term"
)

// Detector inspects the terminal and CI variables.
type Detector struct {
	isTerminal func() bool
	getenv     func(string) string
}

// Option configures a Detector.
type Option func(*Detector)

// WithTerminal overrides the check for an interactive stdout.
func WithTerminal(isTerminal func() bool) Option {
	return func(d *Detector) {
		d.isTerminal = isTerminal
	}
}

// WithGetenv overrides the environment lookup.
func WithGetenv(getenv func(string) string) Option {
	return func(d *Detector) {
		d.getenv = getenv
	}
}

// New creates a Detector looking at os.Stdout and the process environment.
func New(opts ...Option) *Detector {
	d := &Detector{
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the interactive mode on a terminal outside CI and linear otherwise.
func (d *Detector) Detect() domain.OutputMode {
	ci := d.getenv("CI")
	if ci == "true" || ci == "1" || !d.isTerminal() {
		return domain.OutputModeLinear
	}
	return domain.OutputModeTUI
}

// Resolve applies the requested mode, detecting only for auto or an unset mode.
func (d *Detector) Resolve(requested domain.OutputMode) domain.OutputMode {
	switch requested {
	case domain.OutputModeTUI, domain.OutputModeLinear:
		return requested
	default:
		return d.Detect()
	}
}
