package agent

import (
	"context"
	"fmt"
	"time"
)

// ToolUnavailableError is returned when a tool server the analysis needed
// could not be reached or started.
type ToolUnavailableError struct {
	Server string
	Err    error
}

func (e *ToolUnavailableError) Error() string {
	if e.Server == "" {
		return fmt.Sprintf("tool server unavailable: %v", e.Err)
	}
	return fmt.Sprintf("tool server %s unavailable: %v", e.Server, e.Err)
}

func (e *ToolUnavailableError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when the agent produced no response within the
// wall-clock budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent timed out after %s", e.Budget)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Error is returned when the remote agent responded with an error payload.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent error: %s", e.Message)
}
