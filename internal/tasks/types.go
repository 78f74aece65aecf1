package tasks

import (
	"context"
	"time"

	"github.com/darmiel/attrgate/internal/logging"
)

// TaskFunc is the unit of work of a task, e.g. a directory sync.
// Everything written to logger ends up in the task log as well.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

// TaskDefinition registers a task. Tasks without Interval only run when triggered.
type TaskDefinition struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Handler  TaskFunc
}

type TaskStatus struct {
	Name         string        `json:"name"`
	Running      bool          `json:"running"`
	Runs         int           `json:"runs"`
	LastRun      time.Time     `json:"last_run"`
	LastDuration time.Duration `json:"last_duration"`

	// LastResult is "success", "failed: <reason>" or empty before the first run.
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}
