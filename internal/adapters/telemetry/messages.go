package telemetry

import (
	"time"

	"go.trai.ch/fake/internal/core/domain"
)

// MsgTaskStart indicates a new task (span) has started.
type MsgTaskStart struct {
	SpanID    string
	ParentID  string // May be empty if root
	Name      string
	StartTime time.Time
}

// MsgTaskComplete indicates a task (span) has finished.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}

// MsgTaskSkip indicates a task never ran because Dependency failed.
type MsgTaskSkip struct {
	Name       string
	Dependency string
	EndTime    time.Time
}

// MsgTaskLog carries a chunk of log output for a specific task.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgInitPlan initializes the task list with every task of a run.
type MsgInitPlan struct {
	Plan domain.Plan
}
