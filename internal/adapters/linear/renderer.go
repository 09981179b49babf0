// Package linear provides a synchronous, line-buffered renderer for CI environments.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/ui/output"
	"go.trai.ch/fake/internal/ui/style"
)

// Renderer implements ports.Renderer for CI/non-interactive environments.
// It writes one line per task transition to stderr and prefixed task output
// to stdout, each indented two spaces per level of dependency depth.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	depths  map[string]int
	tasks   map[string]*taskState // spanID -> task state
	summary output.Summary
}

type taskState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a new linear Renderer.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr, domain.OutputModeLinear),
		depths: make(map[string]int),
		tasks:  make(map[string]*taskState),
	}
}

// Start is a no-op for linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial output lines and prints the run summary.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, task := range r.tasks {
		r.flushLocked(task)
	}

	r.summary.Fprint(r.output)
	return nil
}

// Wait is a no-op for linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit records task depths and prints what is queued.
func (r *Renderer) OnPlanEmit(plan domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.depths = make(map[string]int, len(plan.Depths))
	for name, depth := range plan.Depths {
		r.depths[name.String()] = depth
	}
	r.summary = output.Summary{}

	_, _ = fmt.Fprintf(r.stderr, "queued %d task(s) for %s\n",
		plan.Len(), strings.Join(domain.TargetNameStrings(plan.Targets), ", "))
}

// OnTaskStart prints a task start message.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{
		name:      name,
		startTime: startTime,
	}
	r.summary.Observe(startTime)

	icon := r.output.String(style.Dot).Foreground(termenv.ANSIMagenta)
	_, _ = fmt.Fprintf(r.stderr, "%s%s %s started\n", r.indent(name), icon, name)
}

// OnTaskLog buffers log data and prints complete lines with task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	task.buf.Write(data)
	for {
		i := bytes.IndexByte(task.buf.Bytes(), '\n')
		if i < 0 {
			return
		}
		line := task.buf.Next(i + 1)
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes remaining buffer and prints completion status.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)

	r.flushLocked(task)
	r.summary.Observe(endTime)

	duration := output.FormatDuration(endTime.Sub(task.startTime))
	indent := r.indent(task.name)

	if err != nil {
		r.summary.Failed++
		icon := r.output.String(style.Cross).Foreground(termenv.ANSIRed)
		_, _ = fmt.Fprintf(r.stderr, "%s%s %s failed after %s: %v\n",
			indent, icon, task.name, duration, err)
		return
	}

	r.summary.Done++
	icon := r.output.String(style.Check).Foreground(termenv.ANSIGreen)
	_, _ = fmt.Fprintf(r.stderr, "%s%s %s done in %s\n",
		indent, icon, task.name, duration)
}

// OnTaskSkip prints that name was not built.
func (r *Renderer) OnTaskSkip(name, dependency string, endTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Skipped++
	r.summary.Observe(endTime)

	icon := r.output.String(style.Dash).Faint()
	_, _ = fmt.Fprintf(r.stderr, "%s%s %s skipped: dependency %s failed\n",
		r.indent(name), icon, name, dependency)
}

func (r *Renderer) indent(name string) string {
	return strings.Repeat("  ", r.depths[name])
}

// flushLocked prints a trailing partial line of task.
// Must be called with r.mu held.
func (r *Renderer) flushLocked(task *taskState) {
	if task.buf.Len() > 0 {
		r.printLineLocked(task.name, task.buf.Bytes())
		task.buf.Reset()
	}
}

// printLineLocked prints a line with the task name prefix. Blank lines are dropped.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(bytes.TrimSpace(line)) == 0 {
		return
	}

	prefix := r.output.String(name + " " + style.Bar).Faint()
	_, _ = fmt.Fprintf(r.stdout, "%s%s %s\n", r.indent(name), prefix, line)
}
