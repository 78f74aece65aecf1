package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

const MaxLogsPerTask = 1000

// Manager runs named tasks on an interval and on demand.
type Manager struct {
	tasks sync.Map

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{ctx: ctx, cancel: cancel}
}

// Register adds a task. A positive interval schedules it until Stop is called.
func (m *Manager) Register(def TaskDefinition) {
	task := &RunnableTask{
		Name:         def.Name,
		Interval:     def.Interval,
		Timeout:      def.Timeout,
		Handler:      def.Handler,
		registeredAt: time.Now(),
	}
	m.tasks.Store(def.Name, task)

	if def.Interval > 0 {
		m.wg.Add(1)
		go m.scheduler(task)
	}
}

// RunNow runs a task synchronously.
func (m *Manager) RunNow(name string) error {
	task, err := m.get(name)
	if err != nil {
		return err
	}
	return task.Run(m.ctx)
}

// Trigger starts a task in the background.
func (m *Manager) Trigger(name string) error {
	task, err := m.get(name)
	if err != nil {
		return err
	}
	go func() {
		_ = task.Run(m.ctx)
	}()
	return nil
}

func (m *Manager) ListStatus() []TaskStatus {
	list := make([]TaskStatus, 0)
	m.tasks.Range(func(_, value any) bool {
		list = append(list, value.(*RunnableTask).Status())
		return true
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	task, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return task.GetLogs(), nil
}

// Stop cancels running tasks and waits for the schedulers to exit.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) get(name string) (*RunnableTask, error) {
	t, ok := m.tasks.Load(name)
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return t.(*RunnableTask), nil
}

func (m *Manager) scheduler(task *RunnableTask) {
	defer m.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			_ = task.Run(m.ctx)
		}
	}
}
