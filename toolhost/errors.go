package toolhost

import (
	"errors"
	"fmt"
)

// ErrToolNotFound indicates no connected server advertises the tool.
var ErrToolNotFound = errors.New("tool not found")

// ServerUnavailableError is returned when a server that owns a requested
// tool is down or a call to it failed at the transport level.
type ServerUnavailableError struct {
	Server string
	Err    error
}

func (e *ServerUnavailableError) Error() string {
	return fmt.Sprintf("tool server %s unavailable: %v", e.Server, e.Err)
}

func (e *ServerUnavailableError) Unwrap() error {
	return e.Err
}
