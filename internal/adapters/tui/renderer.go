package tui

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.trai.ch/fake/internal/adapters/telemetry"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/ui/output"
)

// Renderer wraps the TUI Bubble Tea model as a ports.Renderer.
// Once the build has stopped and the program has released the terminal, it
// prints the same run summary as the linear reporter.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
	out     *termenv.Output

	mu      sync.Mutex
	summary output.Summary
	stopped bool
	exited  bool
	printed bool
}

// NewRenderer creates a new TUI renderer printing its summary to w.
func NewRenderer(model *Model, w io.Writer, opts ...tea.ProgramOption) *Renderer {
	program := tea.NewProgram(model, opts...)
	return &Renderer{
		program: program,
		model:   model,
		errCh:   make(chan error, 1),
		out:     output.New(w, domain.OutputModeTUI),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.printSummaryLocked()
	return nil
}

// Wait blocks until the TUI has terminated.
// Quitting through the program's context is not an error.
func (r *Renderer) Wait() error {
	err := <-r.errCh

	r.mu.Lock()
	r.exited = true
	r.printSummaryLocked()
	r.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// printSummaryLocked prints the summary once both Stop and Wait have run.
func (r *Renderer) printSummaryLocked() {
	if r.stopped && r.exited && !r.printed {
		r.printed = true
		r.summary.Fprint(r.out)
	}
}

// OnPlanEmit forwards the plan to the TUI.
func (r *Renderer) OnPlanEmit(plan domain.Plan) {
	r.mu.Lock()
	r.summary = output.Summary{}
	r.mu.Unlock()

	r.program.Send(telemetry.MsgInitPlan{Plan: plan})
}

// OnTaskStart forwards task start events to the TUI.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	r.summary.Observe(startTime)
	r.mu.Unlock()

	r.program.Send(telemetry.MsgTaskStart{
		SpanID:    spanID,
		ParentID:  parentID,
		Name:      name,
		StartTime: startTime,
	})
}

// OnTaskLog forwards task log data to the TUI.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.program.Send(telemetry.MsgTaskLog{
		SpanID: spanID,
		Data:   data,
	})
}

// OnTaskComplete forwards task completion events to the TUI.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	if err != nil {
		r.summary.Failed++
	} else {
		r.summary.Done++
	}
	r.summary.Observe(endTime)
	r.mu.Unlock()

	r.program.Send(telemetry.MsgTaskComplete{
		SpanID:  spanID,
		EndTime: endTime,
		Err:     err,
	})
}

// OnTaskSkip forwards skipped tasks to the TUI.
func (r *Renderer) OnTaskSkip(name, dependency string, endTime time.Time) {
	r.mu.Lock()
	r.summary.Skipped++
	r.summary.Observe(endTime)
	r.mu.Unlock()

	r.program.Send(telemetry.MsgTaskSkip{
		Name:       name,
		Dependency: dependency,
		EndTime:    endTime,
	})
}

// Model returns the model the program renders.
func (r *Renderer) Model() *Model {
	return r.model
}
