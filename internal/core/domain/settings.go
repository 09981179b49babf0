package domain

import (
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// GraphSource selects where the dependency graph is read from.
type GraphSource string

const (
	// GraphSourceSyntax parses the build file directly.
	GraphSourceSyntax GraphSource = "syntax"
	// GraphSourceDatabase parses the rule database printed by make -p.
	GraphSourceDatabase GraphSource = "database"
)

// OutputMode selects the progress reporter.
type OutputMode string

const (
	// OutputModeAuto picks the interactive reporter on a terminal outside CI.
	OutputModeAuto OutputMode = "auto"
	// OutputModeTUI forces the interactive reporter.
	OutputModeTUI OutputMode = "tui"
	// OutputModeLinear forces line-oriented output.
	OutputModeLinear OutputMode = "linear"
)

// Settings holds the persistent options read from the settings file.
// Zero values mean "not set".
type Settings struct {
	Makefile    string
	Make        string
	GraphSource GraphSource
	OutputMode  OutputMode
	Jobs        int
	LogJSON     bool
	Variables   map[string]string
}

// Validate checks every set field.
func (s *Settings) Validate() error {
	switch s.GraphSource {
	case "", GraphSourceSyntax, GraphSourceDatabase:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "unknown graph source"), "graph_source", string(s.GraphSource))
	}
	switch s.OutputMode {
	case "", OutputModeAuto, OutputModeTUI, OutputModeLinear:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "unknown output mode"), "output_mode", string(s.OutputMode))
	}
	if s.Jobs < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "jobs must not be negative"), "jobs", s.Jobs)
	}
	return nil
}

// VariableArgs returns the variables as VAR=value arguments sorted by name.
func (s *Settings) VariableArgs() []string {
	keys := slices.Sorted(maps.Keys(s.Variables))
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k+"="+s.Variables[k])
	}
	return args
}
