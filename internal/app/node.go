package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/fake/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/adapters/makefile" //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/adapters/shell"    //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/fake/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			makefile.FileLoaderNodeID,
			makefile.DatabaseLoaderNodeID,
			shell.NodeID,
			shell.DryRunNodeID,
			watcher.NodeID,
			logger.NodeID,
			detector.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}
	syntax, err := graft.Dep[*makefile.FileLoader](ctx)
	if err != nil {
		return nil, err
	}
	database, err := graft.Dep[*makefile.DatabaseLoader](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}
	dryRun, err := graft.Dep[*shell.DryRunExecutor](ctx)
	if err != nil {
		return nil, err
	}
	watch, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	det, err := graft.Dep[*detector.Detector](ctx)
	if err != nil {
		return nil, err
	}
	return New(settings, syntax, database, executor, dryRun, watch, log, det), nil
}
