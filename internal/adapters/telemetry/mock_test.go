package telemetry_test

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/fake/internal/core/domain"
)

// recordingRenderer is a simple test double for ports.Renderer.
type recordingRenderer struct {
	mu        sync.Mutex
	plans     []domain.Plan
	starts    []string
	logs      []string
	completes []error
	events    []string
}

func (m *recordingRenderer) Start(_ context.Context) error { return nil }
func (m *recordingRenderer) Stop() error                   { return nil }
func (m *recordingRenderer) Wait() error                   { return nil }

func (m *recordingRenderer) OnPlanEmit(plan domain.Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, plan)
	m.events = append(m.events, "plan")
}

func (m *recordingRenderer) OnTaskStart(_, _, name string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, name)
	m.events = append(m.events, "start "+name)
}

func (m *recordingRenderer) OnTaskLog(_ string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, string(data))
	m.events = append(m.events, "log")
}

func (m *recordingRenderer) OnTaskComplete(_ string, _ time.Time, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completes = append(m.completes, err)
	m.events = append(m.events, "complete")
}

func (m *recordingRenderer) OnTaskSkip(name, dependency string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "skip "+name+" after "+dependency)
}

func (m *recordingRenderer) snapshot() (logs []string, events []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logs...), append([]string(nil), m.events...)
}
