// Package scheduler builds make targets concurrently in dependency order.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/fake/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// Scheduler runs one make process per needed target, each only after all of its dependencies built.
type Scheduler struct {
	executor ports.Executor
	tracer   ports.Tracer
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor: executor,
		tracer:   tracer,
	}
}

// Request describes one build.
type Request struct {
	Graph      *domain.Graph
	Targets    []domain.TargetName
	Invocation *domain.Invocation
	// Jobs limits concurrent make processes. Zero means no limit.
	Jobs int
	// Executor replaces the scheduler's executor for this build, e.g. for a dry run.
	Executor ports.Executor
}

// Outcome is the final state of a requested target.
type Outcome struct {
	Target domain.TargetName
	Status domain.TaskStatus
	Err    error
}

// Report summarizes a build.
type Report struct {
	Outcomes []Outcome
	// Err is the first error observed. A launch failure takes precedence.
	Err error
}

// Failed returns the outcomes that did not complete.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status != domain.StatusCompleted {
			failed = append(failed, o)
		}
	}
	return failed
}

// ResolveTargets validates the requested names against g.
// No names selects the implicit goal. Every name must be declared by the graph.
func ResolveTargets(g *domain.Graph, names []domain.TargetName) ([]domain.TargetName, error) {
	if len(names) == 0 {
		goal, ok := g.ImplicitGoal()
		if !ok {
			return nil, zerr.Wrap(domain.ErrNoDefaultTarget, "nothing to build")
		}
		names = []domain.TargetName{goal}
	}

	var errs []error
	for _, name := range names {
		if !g.Has(name) {
			err := zerr.Wrap(domain.ErrUnknownTarget, "no rule to make target "+name.String())
			errs = append(errs, zerr.With(err, "target", name.String()))
		}
	}
	switch len(errs) {
	case 0:
		return names, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, errors.Join(errs...)
	}
}

// Build resolves the request, checks it for cycles and builds every target reachable from it.
//
// A failed target fails its dependents without running them while unrelated
// targets keep building. A launch failure or cancellation of ctx stops tasks
// that have not started yet. The returned error wraps domain.ErrBuildExecutionFailed
// when a target failed, or is the launch failure itself.
func (s *Scheduler) Build(ctx context.Context, req Request) (*Report, error) {
	targets, err := ResolveTargets(req.Graph, req.Targets)
	if err != nil {
		return nil, err
	}
	if err := req.Graph.DetectCycle(targets); err != nil {
		return nil, err
	}

	executor := req.Executor
	if executor == nil {
		executor = s.executor
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	r := &run{
		s:        s,
		ctx:      ctx,
		cancel:   cancel,
		graph:    req.Graph,
		inv:      req.Invocation,
		executor: executor,
		tasks:    make(map[domain.TargetName]*buildTask),
	}
	if req.Jobs > 0 {
		r.sem = semaphore.NewWeighted(int64(req.Jobs))
	}

	plan := domain.NewPlan(req.Graph, targets)
	r.depths = plan.Depths

	for _, target := range targets {
		r.visit(target)
	}
	s.tracer.EmitPlan(ctx, plan)

	for _, t := range r.order {
		go r.runTask(t)
	}

	report := &Report{Outcomes: make([]Outcome, 0, len(targets))}
	seen := make(map[domain.TargetName]bool, len(targets))
	for _, target := range targets {
		t := r.tasks[target]
		<-t.done
		if seen[target] {
			continue
		}
		seen[target] = true
		report.Outcomes = append(report.Outcomes, Outcome{Target: target, Status: t.status, Err: t.err})
	}

	// Tasks outside the requested set finish before every requested target does,
	// so firstErr is final here.
	report.Err = r.result()
	if report.Err == nil {
		return report, nil
	}
	if errors.Is(report.Err, domain.ErrLaunchFailed) {
		return report, report.Err
	}

	return report, errors.Join(domain.ErrBuildExecutionFailed, report.Err)
}

// buildTask is the single build of one target within a run.
// done is closed once err and status are final; every dependent waits on it.
type buildTask struct {
	task   domain.Task
	done   chan struct{}
	status domain.TaskStatus
	err    error
}

type run struct {
	s        *Scheduler
	ctx      context.Context
	cancel   context.CancelCauseFunc
	graph    *domain.Graph
	inv      *domain.Invocation
	executor ports.Executor
	sem      *semaphore.Weighted
	depths   map[domain.TargetName]int

	mu        sync.Mutex
	tasks     map[domain.TargetName]*buildTask
	order     []*buildTask
	firstErr  error
	launchErr error
}

// visit registers name before recursing into its dependencies,
// so a target reachable along several paths gets one task.
func (r *run) visit(name domain.TargetName) *buildTask {
	r.mu.Lock()
	if t, ok := r.tasks[name]; ok {
		r.mu.Unlock()
		return t
	}
	deps, _ := r.graph.Dependencies(name)
	t := &buildTask{
		task: domain.Task{
			Name:         name,
			Dependencies: deps,
			Invocation:   r.inv,
		},
		done:   make(chan struct{}),
		status: domain.StatusPending,
	}
	r.tasks[name] = t
	r.order = append(r.order, t)
	r.mu.Unlock()

	for _, dep := range deps {
		r.visit(dep)
	}
	return t
}

func (r *run) dependency(name domain.TargetName) *buildTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[name]
}

func (r *run) runTask(t *buildTask) {
	defer close(t.done)

	var failedDep *buildTask
	for _, name := range t.task.Dependencies {
		dep := r.dependency(name)
		<-dep.done
		if dep.err != nil && failedDep == nil {
			failedDep = dep
		}
	}

	if failedDep != nil {
		r.skip(t, failedDep)
		return
	}
	if err := context.Cause(r.ctx); err != nil {
		r.finish(t, domain.StatusFailed, r.interrupted(t, err))
		return
	}

	status, err := r.execute(t)
	r.finish(t, status, err)
}

// execute runs make for t while holding a job slot.
func (r *run) execute(t *buildTask) (domain.TaskStatus, error) {
	if r.sem != nil {
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return domain.StatusFailed, r.interrupted(t, context.Cause(r.ctx))
		}
		defer r.sem.Release(1)
	}

	ctx, span := r.s.tracer.Start(r.ctx, t.task.Name.String(),
		ports.WithAttribute(ports.AttrTarget, t.task.Name.String()),
		ports.WithAttribute(ports.AttrDepth, r.depths[t.task.Name]),
	)
	defer span.End()

	r.setStatus(t, domain.StatusRunning)
	err := r.executor.Execute(ctx, &t.task, span, span)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrLaunchFailed) {
			r.recordLaunchFailure(err)
		}
		return domain.StatusFailed, err
	}
	return domain.StatusCompleted, nil
}

// skip fails t with the error of its failed dependency without running make.
func (r *run) skip(t *buildTask, dep *buildTask) {
	_, span := r.s.tracer.Start(r.ctx, t.task.Name.String(),
		ports.WithAttribute(ports.AttrTarget, t.task.Name.String()),
		ports.WithAttribute(ports.AttrDepth, r.depths[t.task.Name]),
		ports.WithAttribute(ports.AttrSkipped, true),
		ports.WithAttribute(ports.AttrFailedDependency, dep.task.Name.String()),
	)
	marker := zerr.With(zerr.Wrap(domain.ErrDependencyFailed, "not built"), "dependency", dep.task.Name.String())
	span.RecordError(marker)
	span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	t.status = domain.StatusSkipped
	t.err = dep.err
}

func (r *run) interrupted(t *buildTask, cause error) error {
	return zerr.With(zerr.Wrap(cause, "build stopped before target started"), "target", t.task.Name.String())
}

func (r *run) finish(t *buildTask, status domain.TaskStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.status = status
	t.err = err
	if err != nil && r.firstErr == nil {
		r.firstErr = err
	}
}

func (r *run) setStatus(t *buildTask, status domain.TaskStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.status = status
}

func (r *run) recordLaunchFailure(err error) {
	r.mu.Lock()
	if r.launchErr == nil {
		r.launchErr = err
	}
	r.mu.Unlock()
	r.cancel(err)
}

func (r *run) result() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.launchErr != nil {
		return r.launchErr
	}
	return r.firstErr
}
