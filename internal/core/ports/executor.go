// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/fake/internal/core/domain"
)

// Executor defines the interface for building a single target.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs make for task.Name, treating task.Dependencies as already up to date.
	//
	// Output of the two make streams is written line by line to stdout and stderr.
	// A non-zero exit returns domain.ErrBuildFailed; a process that cannot be
	// started returns domain.ErrLaunchFailed.
	Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error
}
