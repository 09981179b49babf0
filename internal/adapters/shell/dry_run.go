package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
)

var _ ports.Executor = (*DryRunExecutor)(nil)

// DryRunExecutor prints the make command of each task instead of running it.
type DryRunExecutor struct{}

// NewDryRunExecutor creates a new DryRunExecutor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{}
}

// Execute writes the command line for task to stdout.
func (e *DryRunExecutor) Execute(_ context.Context, task *domain.Task, stdout, _ io.Writer) error {
	_, err := fmt.Fprintln(stdout, CommandLine(task))
	return err
}

// CommandLine renders the make invocation for task as a shell command.
func CommandLine(task *domain.Task) string {
	inv := task.Invocation
	args := append([]string{inv.Make}, inv.Args(task.Name, task.Dependencies)...)
	for i, arg := range args {
		args[i] = quote(arg)
	}
	return strings.Join(args, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~") {
		return s
	}
	return strconv.Quote(s)
}
