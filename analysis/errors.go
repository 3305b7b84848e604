package analysis

import (
	"errors"
	"fmt"

	"github.com/amonks/blueprint/internal/validation"
)

var (
	// ErrEmptyProjectName indicates the project name is blank.
	ErrEmptyProjectName = errors.New("project name is required")
	// ErrEmptyRequirements indicates the requirements text is blank.
	ErrEmptyRequirements = errors.New("requirements text is required")
	// ErrUnknownKind indicates an analysis kind is not recognized.
	ErrUnknownKind = errors.New("unknown analysis kind")
	// ErrAmbiguousKindPrefix indicates a prefix matches multiple kinds.
	ErrAmbiguousKindPrefix = errors.New("ambiguous analysis kind prefix")
	// ErrInvalidState indicates a slot transition precondition was violated.
	ErrInvalidState = errors.New("invalid slot state")
	// ErrNotCompleted indicates an export was requested for a slot that has
	// not completed.
	ErrNotCompleted = errors.New("analysis not completed")
)

// InvalidStateError is returned when a slot cannot accept a transition, for
// example starting a slot that is already running.
type InvalidStateError struct {
	Kind   Kind
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("analysis %s is %s", e.Kind, e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

func formatUnknownKindError(kind Kind) error {
	return validation.FormatInvalidValueError(ErrUnknownKind, kind, Kinds())
}

func formatAmbiguousKindError(input string) error {
	return fmt.Errorf("%w: %q", ErrAmbiguousKindPrefix, input)
}
