// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/fake/internal/adapters/config"
	_ "go.trai.ch/fake/internal/adapters/detector"
	_ "go.trai.ch/fake/internal/adapters/logger"
	_ "go.trai.ch/fake/internal/adapters/makefile"
	_ "go.trai.ch/fake/internal/adapters/shell"
	_ "go.trai.ch/fake/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/fake/internal/app"
)
