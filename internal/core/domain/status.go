package domain

// TaskStatus represents the state of a build task within one run.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting for its dependencies.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates make is running for the task.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates make finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates make failed or could not be started.
	StatusFailed TaskStatus = "Failed"
	// StatusSkipped indicates make was never run because a dependency failed.
	StatusSkipped TaskStatus = "Skipped"
)

// Done reports whether the status is final.
func (s TaskStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}
