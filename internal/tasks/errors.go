package tasks

import "fmt"

// TaskNotFoundError is returned for names no task has been registered under.
type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("no task registered as '%s'", e.Name)
}
