package makefile

import (
	"context"

	"github.com/grindlemire/graft"
)

const (
	// FileLoaderNodeID is the unique identifier for the build file loader Graft node.
	FileLoaderNodeID graft.ID = "adapter.makefile.file"
	// DatabaseLoaderNodeID is the unique identifier for the rule database loader Graft node.
	DatabaseLoaderNodeID graft.ID = "adapter.makefile.database"
)

func init() {
	graft.Register(graft.Node[*FileLoader]{
		ID:        FileLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*FileLoader, error) {
			return NewFileLoader(), nil
		},
	})

	graft.Register(graft.Node[*DatabaseLoader]{
		ID:        DatabaseLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*DatabaseLoader, error) {
			return NewDatabaseLoader(), nil
		},
	})
}
