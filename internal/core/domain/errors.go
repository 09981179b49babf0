package domain

import "go.trai.ch/zerr"

var (
	// ErrBuildFileNotFound is returned when the build file does not exist.
	ErrBuildFileNotFound = zerr.New("build file not found")

	// ErrBuildFileReadFailed is returned when the build file exists but cannot be read.
	ErrBuildFileReadFailed = zerr.New("failed to read build file")

	// ErrInvalidBuildFile is returned when the build file cannot be parsed in full.
	ErrInvalidBuildFile = zerr.New("invalid build file")

	// ErrDatabaseDumpFailed is returned when make cannot print its rule database.
	ErrDatabaseDumpFailed = zerr.New("failed to dump make rule database")

	// ErrCycleDetected is returned when the requested targets reach a dependency cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownTarget is returned when a requested target is not declared in the graph.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrNoDefaultTarget is returned when no target was requested and the graph has none to offer.
	ErrNoDefaultTarget = zerr.New("no targets specified and no default target found")

	// ErrBuildFailed is returned when make exits with a non-zero status for a target.
	ErrBuildFailed = zerr.New("make exited with non-zero status")

	// ErrDependencyFailed marks a target that was skipped because a dependency failed.
	ErrDependencyFailed = zerr.New("skipped because a dependency failed")

	// ErrLaunchFailed is returned when the make process cannot be started at all.
	ErrLaunchFailed = zerr.New("failed to launch build tool")

	// ErrBuildExecutionFailed is returned when at least one requested target failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrConfigReadFailed is returned when the settings file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the settings file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidSetting is returned when a setting or flag has an unsupported value.
	ErrInvalidSetting = zerr.New("invalid setting")

	// ErrUnsupportedShell is returned when completions are requested for an unknown shell.
	ErrUnsupportedShell = zerr.New("unsupported shell, expected bash, zsh, fish or powershell")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch build directory")
)
