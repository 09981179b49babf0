package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/fake/internal/adapters/watcher"
	"go.trai.ch/fake/internal/core/domain"
)

// Watch builds like Run, then rebuilds whenever a file below the build
// directory changes content. A changed build file reloads the graph first.
// It returns nil once ctx is done.
func (a *App) Watch(ctx context.Context, opts Options) error {
	s, err := a.prepare(opts)
	if err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, s.inv.Dir); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	changes := newChangeQueue()
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, changes.push)
	defer debouncer.Stop()
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	graph, err := a.load(ctx, s)
	if err != nil {
		return err
	}

	fingerprints := watcher.NewFingerprints()
	buildFile := s.inv.BuildFile
	if !filepath.IsAbs(buildFile) {
		buildFile = filepath.Join(s.inv.Dir, buildFile)
	}

	for {
		if graph != nil {
			a.reportBuild(a.build(ctx, s, graph))
		}
		if ctx.Err() != nil {
			return nil
		}

		// Writes made by the build itself are the new baseline, not changes.
		if !sleep(ctx, watcher.DefaultDebounceWindow) {
			return nil
		}
		debouncer.Flush()
		fingerprints.Changed(changes.take())

		a.logger.Info("watching " + s.inv.Dir + " for changes")
		changed, ok := a.waitForChange(ctx, changes, fingerprints)
		if !ok {
			return nil
		}
		a.logger.Info(describeChange(s.inv.Dir, changed) + ", rebuilding")

		if graph == nil || slices.Contains(changed, buildFile) {
			graph, err = a.load(ctx, s)
			if err != nil {
				a.logger.Error(err)
				graph = nil
			}
		}
	}
}

// reportBuild logs errors the reporter has not shown already.
func (a *App) reportBuild(err error) {
	if err == nil || errors.Is(err, domain.ErrBuildExecutionFailed) || errors.Is(err, context.Canceled) {
		return
	}
	a.logger.Error(err)
}

func (a *App) waitForChange(ctx context.Context, changes *changeQueue, fingerprints *watcher.Fingerprints) ([]string, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-changes.ready:
			if changed := fingerprints.Changed(changes.take()); len(changed) > 0 {
				return changed, true
			}
		}
	}
}

func describeChange(dir string, changed []string) string {
	first := changed[0]
	if rel, err := filepath.Rel(dir, first); err == nil && !strings.HasPrefix(rel, "..") {
		first = rel
	}
	if len(changed) == 1 {
		return first + " changed"
	}
	return fmt.Sprintf("%s and %d more changed", first, len(changed)-1)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// changeQueue collects debounced batches until the watch loop takes them.
type changeQueue struct {
	mu    sync.Mutex
	paths []string
	ready chan struct{}
}

func newChangeQueue() *changeQueue {
	return &changeQueue{ready: make(chan struct{}, 1)}
}

func (q *changeQueue) push(paths []string) {
	q.mu.Lock()
	q.paths = append(q.paths, paths...)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *changeQueue) take() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	paths := q.paths
	q.paths = nil
	return paths
}
