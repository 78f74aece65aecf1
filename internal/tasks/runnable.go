package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single run if the task defines no timeout.
const DefaultTimeout = 5 * time.Minute

var ErrAlreadyRunning = errors.New("task is already running")

// RunnableTask is a registered task together with the state of its last run.
type RunnableTask struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Handler  TaskFunc

	registeredAt time.Time

	mu           sync.RWMutex
	running      bool
	runs         int
	lastRun      time.Time
	lastDuration time.Duration
	lastErr      error
	logs         []LogEntry
}

// Run executes the handler once. A run started while another one is in progress
// returns ErrAlreadyRunning and leaves the state of the other run untouched.
func (t *RunnableTask) Run(parent context.Context) error {
	if !t.begin() {
		log.Warn().Str("task", t.Name).Msg("task is already running, skipping run")
		return ErrAlreadyRunning
	}

	logger := NewCompositeLogger(t, log.With().Str("task", t.Name).Logger())
	logger.Info("run #%d started", t.runCount())

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	err := t.Handler(ctx, logger)
	took := time.Since(start)

	if err != nil {
		logger.Error("run failed after %s: %v", took, err)
	} else {
		logger.Info("run finished in %s", took)
	}
	t.finish(took, err)
	return err
}

func (t *RunnableTask) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.running = true
	t.runs++
	t.logs = t.logs[:0:0]
	return true
}

func (t *RunnableTask) finish(took time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.lastRun = time.Now()
	t.lastDuration = took
	t.lastErr = err
}

func (t *RunnableTask) runCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runs
}

func (t *RunnableTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := TaskStatus{
		Name:         t.Name,
		Running:      t.running,
		Runs:         t.runs,
		LastRun:      t.lastRun,
		LastDuration: t.lastDuration,
	}
	switch {
	case t.lastRun.IsZero():
	case t.lastErr != nil:
		s.LastResult = fmt.Sprintf("failed: %v", t.lastErr)
	default:
		s.LastResult = "success"
	}

	if t.Interval > 0 {
		from := t.lastRun
		if from.IsZero() {
			from = t.registeredAt
		}
		s.NextRun = from.Add(t.Interval)
	}
	return s
}

// GetLogs returns a copy of the log of the current or last run.
func (t *RunnableTask) GetLogs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]LogEntry(nil), t.logs...)
}

// AppendLog adds a line to the log of the current run, dropping the oldest line
// once MaxLogsPerTask is reached.
func (t *RunnableTask) AppendLog(level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{Time: time.Now(), Level: level, Message: msg})
	if over := len(t.logs) - MaxLogsPerTask; over > 0 {
		t.logs = t.logs[over:]
	}
}
