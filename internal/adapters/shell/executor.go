// Package shell provides the executor that runs make for a single target.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

const (
	ptyRows = 24
	ptyCols = 120

	// outputWaitDelay bounds how long output is drained after make exits.
	outputWaitDelay = 250 * time.Millisecond
)

// Executor implements ports.Executor using os/exec and, when requested, a pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs make for the task. It waits for make to exit while its output is
// drained, and gives up on output still held open by a background child of make
// after outputWaitDelay.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error {
	inv := task.Invocation

	//nolint:gosec // make and its arguments come from the user
	cmd := exec.CommandContext(ctx, inv.Make, inv.Args(task.Name, task.Dependencies)...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = outputWaitDelay

	var mu sync.Mutex
	outLines := &lineWriter{mu: &mu, w: stdout}
	errLines := &lineWriter{mu: &mu, w: stderr}
	cmd.Stderr = errLines

	term, err := e.start(cmd, inv, outLines)
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrLaunchFailed, "could not start make"), "make", inv.Make), "cause", err.Error())
	}

	waitErr := cmd.Wait()
	copyErr := term.drain()
	_ = outLines.Close()
	_ = errLines.Close()

	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return e.exitError(ctx, task, waitErr)
	}
	if copyErr != nil {
		return zerr.With(zerr.Wrap(copyErr, "failed to read make output"), "target", task.Name.String())
	}
	return nil
}

// terminal copies make's stdout from a pty master.
type terminal struct {
	ptmx *os.File
	done chan error
}

// drain waits for the copy loop to read everything make wrote. A background
// child can keep the pty open, so the master is closed after outputWaitDelay.
func (t *terminal) drain() error {
	if t == nil {
		return nil
	}
	timer := time.NewTimer(outputWaitDelay)
	defer timer.Stop()

	select {
	case err := <-t.done:
		_ = t.ptmx.Close()
		return err
	case <-timer.C:
	}
	_ = t.ptmx.Close()
	return <-t.done
}

// start launches cmd with stdout on a pty when the invocation asks for a terminal.
// Otherwise os/exec copies stdout itself and a nil terminal is returned.
func (e *Executor) start(cmd *exec.Cmd, inv *domain.Invocation, stdout io.Writer) (*terminal, error) {
	if inv.Terminal {
		ptmx, tty, err := pty.Open()
		if err == nil {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: ptyRows, Cols: ptyCols})
			cmd.Stdout = tty
			startErr := cmd.Start()
			_ = tty.Close()
			if startErr != nil {
				_ = ptmx.Close()
				return nil, startErr
			}
			term := &terminal{ptmx: ptmx, done: make(chan error, 1)}
			go func() { term.done <- copyTerminal(stdout, ptmx) }()
			return term, nil
		}
		e.logger.Warn("pseudo-terminal unavailable, make output loses colors: " + err.Error())
	}

	cmd.Stdout = stdout
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (e *Executor) exitError(ctx context.Context, task *domain.Task, waitErr error) error {
	name := task.Name.String()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zerr.With(zerr.Wrap(context.Cause(ctx), "make was interrupted"), "target", name)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	err := zerr.Wrap(domain.ErrBuildFailed, "failed to build target")
	err = zerr.With(err, "target", name)
	return zerr.With(err, "exit_code", exitCode)
}

// copyTerminal reads the pty master until every slave descriptor is closed.
// Linux reports that as EIO rather than EOF.
func copyTerminal(dst io.Writer, ptmx io.Reader) error {
	_, err := io.Copy(dst, ptmx)
	if errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
