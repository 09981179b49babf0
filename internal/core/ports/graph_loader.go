package ports

import (
	"context"

	"go.trai.ch/fake/internal/core/domain"
)

// GraphLoader defines the interface for reading the target graph of a build file.
//
//go:generate mockgen -source=graph_loader.go -destination=mocks/mock_graph_loader.go -package=mocks
type GraphLoader interface {
	// Load returns the dependency graph of inv.BuildFile.
	Load(ctx context.Context, inv *domain.Invocation) (*domain.Graph, error)
}
