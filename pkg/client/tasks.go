package client

import (
	"context"
	"fmt"
	"time"

	"github.com/darmiel/attrgate/internal/api"
	"github.com/darmiel/attrgate/internal/tasks"
)

// ListTasks returns the status of every background task, sorted by name.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.TaskStatus, error) {
	var res []tasks.TaskStatus
	_, err := c.get(ctx, c.url().setPath(api.ListTasksRoute).build(), &res)
	return res, err
}

// TaskStatus returns the status of a single task.
func (c *Client) TaskStatus(ctx context.Context, name string) (*tasks.TaskStatus, error) {
	list, err := c.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, tasks.TaskNotFoundError{Name: name}
}

// TriggerTask starts a task on the server. It does not wait for the run to finish.
func (c *Client) TriggerTask(ctx context.Context, name string) error {
	var res api.TriggerTaskResponse
	if _, err := c.post(ctx, c.url().
		setPath(api.TriggerTaskRoute).
		setPathParam("name", name).
		build(), nil, &res); err != nil {
		return err
	}
	if res.Status != api.TaskTriggered {
		return fmt.Errorf("unexpected trigger status '%s'", res.Status)
	}
	return nil
}

// WaitForTask polls until a run of the task that finished after since is reported.
func (c *Client) WaitForTask(ctx context.Context, name string, since time.Time, interval time.Duration) (*tasks.TaskStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.TaskStatus(ctx, name)
		if err != nil {
			return nil, err
		}
		if !status.Running && status.LastRun.After(since) {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) GetTaskLogs(ctx context.Context, name string) ([]tasks.LogEntry, error) {
	var res []tasks.LogEntry
	_, err := c.get(ctx, c.url().
		setPath(api.LogsForTaskRoute).
		setPathParam("name", name).
		build(), &res)
	return res, err
}
