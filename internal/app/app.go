// Package app implements the application layer for fake.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.trai.ch/fake/internal/adapters/detector"
	"go.trai.ch/fake/internal/adapters/linear"
	"go.trai.ch/fake/internal/adapters/telemetry"
	"go.trai.ch/fake/internal/adapters/tui"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/fake/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	settings    ports.SettingsLoader
	syntax      ports.GraphLoader
	database    ports.GraphLoader
	executor    ports.Executor
	dryRun      ports.Executor
	watcher     ports.Watcher
	logger      ports.Logger
	detector    *detector.Detector
	stdout      io.Writer
	stderr      io.Writer
	getwd       func() (string, error)
	teaOptions  []tea.ProgramOption
	disableTick bool
}

// New creates a new App instance.
func New(
	settings ports.SettingsLoader,
	syntax ports.GraphLoader,
	database ports.GraphLoader,
	executor ports.Executor,
	dryRun ports.Executor,
	watcher ports.Watcher,
	log ports.Logger,
	det *detector.Detector,
) *App {
	return &App{
		settings: settings,
		syntax:   syntax,
		database: database,
		executor: executor,
		dryRun:   dryRun,
		watcher:  watcher,
		logger:   log,
		detector: det,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		getwd:    os.Getwd,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithDisableTick disables the TUI tick loop.
// This is primarily used for testing with synctest to avoid goroutine deadlocks.
func (a *App) WithDisableTick() *App {
	a.disableTick = true
	return a
}

// WithOutput redirects task output and reporter lines.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWorkingDir fixes the directory flags are resolved against.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// Options holds the command-line choices for one invocation.
// Zero values fall back to the settings file, then to the defaults.
type Options struct {
	Targets     []string
	Variables   []string
	File        string
	Directory   string
	Make        string
	GraphSource domain.GraphSource
	OutputMode  domain.OutputMode
	// Jobs is nil unless given on the command line.
	Jobs    *int
	DryRun  bool
	LogJSON bool
}

// session is Options merged with the settings file.
type session struct {
	inv     *domain.Invocation
	source  domain.GraphSource
	mode    domain.OutputMode
	jobs    int
	targets []domain.TargetName
	dryRun  bool
}

func (a *App) prepare(opts Options) (*session, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	dir := cwd
	if opts.Directory != "" {
		dir = opts.Directory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
	}

	settings, err := a.settings.Load(dir)
	if err != nil {
		return nil, err
	}
	merged := mergeSettings(settings, opts)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if merged.LogJSON {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}

	buildFile, err := a.settings.ResolveBuildFile(dir, merged.Makefile)
	if err != nil {
		return nil, err
	}

	return &session{
		inv: &domain.Invocation{
			Make:      merged.Make,
			BuildFile: buildFile,
			Dir:       dir,
			Variables: append(merged.VariableArgs(), opts.Variables...),
		},
		source:  merged.GraphSource,
		mode:    merged.OutputMode,
		jobs:    merged.Jobs,
		targets: domain.NewTargetNames(opts.Targets),
		dryRun:  opts.DryRun,
	}, nil
}

// mergeSettings lets flags override the settings file and fills in defaults.
// Variables from the command line are appended by the caller so they win.
func mergeSettings(s *domain.Settings, opts Options) domain.Settings {
	merged := *s
	if opts.File != "" {
		merged.Makefile = opts.File
	}
	if opts.Make != "" {
		merged.Make = opts.Make
	}
	if merged.Make == "" {
		merged.Make = domain.DefaultMakeBinary
	}
	if opts.GraphSource != "" {
		merged.GraphSource = opts.GraphSource
	}
	if merged.GraphSource == "" {
		merged.GraphSource = domain.GraphSourceSyntax
	}
	if opts.OutputMode != "" {
		merged.OutputMode = opts.OutputMode
	}
	if opts.Jobs != nil {
		merged.Jobs = *opts.Jobs
	}
	merged.LogJSON = merged.LogJSON || opts.LogJSON
	return merged
}

func (a *App) load(ctx context.Context, s *session) (*domain.Graph, error) {
	loader := a.syntax
	if s.source == domain.GraphSourceDatabase {
		loader = a.database
	}
	return loader.Load(ctx, s.inv)
}

// Run builds the requested targets, or the default goal when none are given.
func (a *App) Run(ctx context.Context, opts Options) error {
	s, err := a.prepare(opts)
	if err != nil {
		return err
	}
	graph, err := a.load(ctx, s)
	if err != nil {
		return err
	}
	return a.build(ctx, s, graph)
}

// build runs the scheduler and the progress reporter side by side.
func (a *App) build(ctx context.Context, s *session, graph *domain.Graph) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mode := a.detector.Resolve(s.mode)
	interactive := mode == domain.OutputModeTUI

	inv := *s.inv
	inv.Terminal = interactive && !s.dryRun

	renderer := a.newRenderer(ctx, mode)

	tp := setupOTel(telemetry.NewBridge(renderer))
	defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()

	tracer := telemetry.NewOTelTracer("fake").
		WithRenderer(renderer).
		WithRunID(uuid.NewString())
	defer func() { _ = tracer.Shutdown(context.WithoutCancel(ctx)) }()

	req := scheduler.Request{
		Graph:      graph,
		Targets:    s.targets,
		Invocation: &inv,
		Jobs:       s.jobs,
	}
	if s.dryRun {
		req.Executor = a.dryRun
	}
	sched := scheduler.NewScheduler(a.executor, tracer)

	var g errgroup.Group

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		err := renderer.Wait()
		if interactive {
			// The TUI only ends before the build when the user quit it.
			cancel()
		}
		return err
	})

	var buildErr error
	g.Go(func() error {
		defer func() { _ = renderer.Stop() }()
		_, buildErr = sched.Build(ctx, req)
		return nil
	})

	if err := g.Wait(); err != nil {
		return errors.Join(buildErr, err)
	}
	return buildErr
}

func (a *App) newRenderer(ctx context.Context, mode domain.OutputMode) ports.Renderer {
	if mode != domain.OutputModeTUI {
		return linear.NewRenderer(a.stdout, a.stderr)
	}

	model := tui.NewModel(a.stderr)
	if a.disableTick {
		model = model.WithDisableTick()
	}
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
	return tui.NewRenderer(&model, a.stderr, opts...)
}

// PrintGraph writes the loaded dependency graph as indented JSON.
func (a *App) PrintGraph(ctx context.Context, opts Options) error {
	s, err := a.prepare(opts)
	if err != nil {
		return err
	}
	graph, err := a.load(ctx, s)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode graph")
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// Targets returns every declared target in declaration order.
// Any failure to read the graph yields no targets.
func (a *App) Targets(ctx context.Context, opts Options) []string {
	s, err := a.prepare(opts)
	if err != nil {
		return nil
	}
	graph, err := a.load(ctx, s)
	if err != nil {
		return nil
	}

	names := make([]string, 0, graph.Len())
	for name := range graph.Targets() {
		names = append(names, name.String())
	}
	return names
}

// PrintTargets writes one declared target per line.
func (a *App) PrintTargets(ctx context.Context, opts Options) error {
	for _, name := range a.Targets(ctx, opts) {
		if _, err := fmt.Fprintln(a.stdout, name); err != nil {
			return err
		}
	}
	return nil
}
