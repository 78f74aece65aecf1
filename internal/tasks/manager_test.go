package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/attrgate/internal/logging"
)

func TestManager_RunNow(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	calls := 0
	m.Register(TaskDefinition{
		Name: "directory-sync",
		Handler: func(_ context.Context, logger logging.InternalLogger) error {
			calls++
			logger.Info("synced %d users", 3)
			return nil
		},
	})

	require.NoError(t, m.RunNow("directory-sync"))
	assert.Equal(t, 1, calls)

	logs, err := m.GetLogs("directory-sync")
	require.NoError(t, err)

	var messages []string
	for _, l := range logs {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "synced 3 users")

	status := m.ListStatus()
	require.Len(t, status, 1)
	assert.Equal(t, "success", status[0].LastResult)
	assert.Equal(t, 1, status[0].Runs)
	assert.False(t, status[0].LastRun.IsZero())
	assert.True(t, status[0].NextRun.IsZero(), "unscheduled task has no next run")
}

func TestManager_RunNowFailure(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	boom := errors.New("boom")
	m.Register(TaskDefinition{
		Name: "failing",
		Handler: func(context.Context, logging.InternalLogger) error {
			return boom
		},
	})

	assert.ErrorIs(t, m.RunNow("failing"), boom)
	assert.Equal(t, "failed: boom", m.ListStatus()[0].LastResult)
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var notFound TaskNotFoundError
	assert.ErrorAs(t, m.RunNow("missing"), &notFound)
	assert.ErrorAs(t, m.Trigger("missing"), &notFound)
	_, err := m.GetLogs("missing")
	assert.ErrorAs(t, err, &notFound)
}

func TestRunnableTask_AlreadyRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	task := &RunnableTask{
		Name: "slow",
		Handler: func(context.Context, logging.InternalLogger) error {
			close(started)
			<-release
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- task.Run(context.Background()) }()
	<-started

	assert.ErrorIs(t, task.Run(context.Background()), ErrAlreadyRunning)
	assert.True(t, task.Status().Running)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, task.Status().Running)
}

func TestRunnableTask_Timeout(t *testing.T) {
	task := &RunnableTask{
		Name:    "bounded",
		Timeout: 10 * time.Millisecond,
		Handler: func(ctx context.Context, _ logging.InternalLogger) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	assert.ErrorIs(t, task.Run(context.Background()), context.DeadlineExceeded)
}

func TestRunnableTask_LogCap(t *testing.T) {
	task := &RunnableTask{Name: "chatty"}
	for i := 0; i < MaxLogsPerTask+10; i++ {
		task.AppendLog("info", "line")
	}
	assert.Len(t, task.GetLogs(), MaxLogsPerTask)
}
