package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTask is returned before any model call when the task is not
	// one of the supported tasks.
	ErrInvalidTask = errors.New("invalid task")
	// ErrEmptyText is returned before any model call when the input is blank.
	ErrEmptyText = errors.New("text must not be empty")
)

// UpstreamError wraps a failure of the language model call itself
// (transport, auth, quota, model error). It is never converted into a result.
type UpstreamError struct {
	Task Task
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: language model call failed: %v", e.Task.Noun(), e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
