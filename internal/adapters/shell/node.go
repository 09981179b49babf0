package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fake/internal/adapters/logger"
	"go.trai.ch/fake/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the executor Graft node.
	NodeID graft.ID = "adapter.executor"
	// DryRunNodeID is the unique identifier for the dry-run executor Graft node.
	DryRunNodeID graft.ID = "adapter.executor.dry_run"
)

func init() {
	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Executor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(log), nil
		},
	})

	graft.Register(graft.Node[*DryRunExecutor]{
		ID:        DryRunNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*DryRunExecutor, error) {
			return NewDryRunExecutor(), nil
		},
	})
}
