package app_test

import (
	"bytes"
	"testing"

	"go.trai.ch/fake/internal/adapters/detector"
	"go.trai.ch/fake/internal/app"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/fake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	settings *mocks.MockSettingsLoader
	syntax   *mocks.MockGraphLoader
	database *mocks.MockGraphLoader
	executor *mocks.MockExecutor
	dryRun   *mocks.MockExecutor
	watcher  *mocks.MockWatcher
	logger   *mocks.MockLogger
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &fixture{
		settings: mocks.NewMockSettingsLoader(ctrl),
		syntax:   mocks.NewMockGraphLoader(ctrl),
		database: mocks.NewMockGraphLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		dryRun:   mocks.NewMockExecutor(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		stdout:   new(bytes.Buffer),
		stderr:   new(bytes.Buffer),
		dir:      t.TempDir(),
	}
}

// app builds an App that always reports linearly unless a mode is requested.
func (f *fixture) app(log ports.Logger) *app.App {
	if log == nil {
		log = f.logger
	}
	det := detector.New(
		detector.WithTerminal(func() bool { return false }),
		detector.WithGetenv(func(string) string { return "" }),
	)
	return app.New(f.settings, f.syntax, f.database, f.executor, f.dryRun, f.watcher, log, det).
		WithOutput(f.stdout, f.stderr).
		WithWorkingDir(f.dir)
}

// expectSettings makes the settings file return s and the build file resolve to Makefile.
func (f *fixture) expectSettings(s *domain.Settings, explicit string) {
	if s == nil {
		s = &domain.Settings{}
	}
	f.settings.EXPECT().Load(f.dir).Return(s, nil)
	f.settings.EXPECT().ResolveBuildFile(f.dir, explicit).Return(buildFileName(explicit), nil)
}

func buildFileName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return "Makefile"
}

// testGraph is all <- {lib, docs}, lib <- util.o with all as default goal.
func testGraph() *domain.Graph {
	g := domain.NewGraph()
	g.Declare(domain.NewTargetName("all"), domain.NewTargetNames([]string{"lib", "docs"}))
	g.Declare(domain.NewTargetName("lib"), domain.NewTargetNames([]string{"util.o"}))
	g.Declare(domain.NewTargetName("docs"), nil)
	g.Declare(domain.NewTargetName("util.o"), nil)
	g.SetDefaultGoal(domain.NewTargetName("all"))
	return g
}

func taskNamed(name string) gomock.Matcher {
	return gomock.Cond(func(task *domain.Task) bool {
		return task.Name.String() == name
	})
}
