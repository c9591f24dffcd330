package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyCompleted is returned when completing a task twice. Completion is terminal.
var ErrAlreadyCompleted = errors.New("task is already completed")

// NotFoundError indicates a task or category id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationError is returned for input rejected at the service boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
