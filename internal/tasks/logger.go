package tasks

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/darmiel/attrgate/internal/logging"
)

var _ logging.InternalLogger = (*TaskStoreLogger)(nil)

// TaskStoreLogger keeps log lines in the log of the current task run.
type TaskStoreLogger struct {
	Task *RunnableTask
}

func NewTaskStoreLogger(task *RunnableTask) *TaskStoreLogger {
	return &TaskStoreLogger{Task: task}
}

func (t *TaskStoreLogger) store(level, format string, args ...any) {
	t.Task.AppendLog(level, fmt.Sprintf(format, args...))
}

func (t *TaskStoreLogger) Debug(format string, args ...any) { t.store("debug", format, args...) }
func (t *TaskStoreLogger) Info(format string, args ...any)  { t.store("info", format, args...) }
func (t *TaskStoreLogger) Warn(format string, args ...any)  { t.store("warn", format, args...) }
func (t *TaskStoreLogger) Error(format string, args ...any) { t.store("error", format, args...) }

// NewCompositeLogger logs to zerolog first and then to the task log.
func NewCompositeLogger(task *RunnableTask, zlog zerolog.Logger) logging.MultiLogger {
	return logging.NewMultiLogger(logging.NewZLogger(zlog), NewTaskStoreLogger(task))
}
