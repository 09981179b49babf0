// Package tui renders build progress as an interactive terminal UI: a task
// list indented by dependency depth next to the selected task's output.
package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/ui/output"
)

// NewModel creates a new TUI model with default settings.
// w only selects the color profile; the program decides where to draw.
func NewModel(w io.Writer) Model {
	out := output.New(w, domain.OutputModeTUI)
	lipgloss.SetColorProfile(out.Profile)

	return Model{
		Tasks:      make([]*TaskNode, 0),
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		Spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(taskRunningStyle)),
		AutoScroll: true,
		FollowMode: true,
	}
}

// WithDisableTick stops the spinner from scheduling ticks.
func (m Model) WithDisableTick() Model {
	m.DisableTick = true
	return m
}
