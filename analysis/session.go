package analysis

import (
	"fmt"
	"strings"
	"sync"
	"time"

	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/google/uuid"
)

// Project captures the immutable inputs of one session.
type Project struct {
	Name         string    `json:"name"`
	Requirements string    `json:"requirements"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status represents the slot lifecycle state.
type Status string

const (
	// StatusNotStarted indicates the analysis has not run.
	StatusNotStarted Status = "not-started"
	// StatusRunning indicates the analysis is running.
	StatusRunning Status = "running"
	// StatusCompleted indicates the analysis completed successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the analysis failed.
	StatusFailed Status = "failed"
)

// ValidStatuses returns all valid slot status values.
func ValidStatuses() []Status {
	return []Status{StatusNotStarted, StatusRunning, StatusCompleted, StatusFailed}
}

// IsValid reports whether the status is a known status value.
func (s Status) IsValid() bool {
	for _, known := range ValidStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Slot tracks the state of one analysis kind within a session.
type Slot struct {
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	Result     string     `json:"result,omitempty"`
	Err        string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// run identifies the invocation that owns the slot. finish only lands
	// a result carrying the matching token, so a run that outlives Clear
	// (or a Clear-then-restart) cannot write onto a later run's slot.
	run uint64
}

// SessionOptions configures a session.
// Nil/zero fields use defaults.
type SessionOptions struct {
	// Now supplies timestamps, for tests.
	Now func() time.Time
	// Context overrides the default dependency graph per kind.
	// A key that is present replaces that kind's prerequisite list
	// entirely; absent keys keep the defaults.
	Context map[Kind][]Kind
}

// Session owns one project and the full set of analysis slots. It is the
// sole mutable root; all slot transitions funnel through the Manager.
type Session struct {
	id      string
	project Project
	context map[Kind][]Kind

	mu    sync.Mutex
	slots map[Kind]*Slot
	seq   uint64
}

// NewSession validates the project inputs and creates a session with every
// slot fresh at not-started.
func NewSession(name, requirements string, opts SessionOptions) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyProjectName
	}
	if internalstrings.IsBlank(requirements) {
		return nil, ErrEmptyRequirements
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	contextGraph := make(map[Kind][]Kind, len(Kinds()))
	for _, kind := range Kinds() {
		deps := DefaultContext(kind)
		if override, ok := opts.Context[kind]; ok {
			deps = override
		}
		for _, dep := range deps {
			if !dep.IsValid() {
				return nil, formatUnknownKindError(dep)
			}
			if dep == kind {
				return nil, fmt.Errorf("analysis %s cannot depend on itself", kind)
			}
		}
		contextGraph[kind] = append([]Kind(nil), deps...)
	}

	session := &Session{
		id: uuid.NewString(),
		project: Project{
			Name:         name,
			Requirements: requirements,
			CreatedAt:    now(),
		},
		context: contextGraph,
		slots:   make(map[Kind]*Slot, len(Kinds())),
	}
	for _, kind := range Kinds() {
		session.slots[kind] = &Slot{Kind: kind, Status: StatusNotStarted}
	}
	return session, nil
}

// ID returns the generated session identifier.
func (s *Session) ID() string {
	return s.id
}

// Project returns the session's project.
func (s *Session) Project() Project {
	return s.project
}

// Slot returns a copy of the slot for the given kind.
func (s *Session) Slot(kind Kind) (Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[kind]
	if !ok {
		return Slot{}, formatUnknownKindError(kind)
	}
	return *slot, nil
}

// Slots returns copies of every slot in display order.
func (s *Session) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make([]Slot, 0, len(s.slots))
	for _, kind := range Kinds() {
		slots = append(slots, *s.slots[kind])
	}
	return slots
}

// ContextDepends returns the configured prerequisite kinds for a kind.
func (s *Session) ContextDepends(kind Kind) []Kind {
	return append([]Kind(nil), s.context[kind]...)
}

// ContextFor returns the requirements text plus the completed results of the
// kinds the given kind depends on. A prerequisite that has not completed
// contributes nothing; the context degrades rather than blocking.
func (s *Session) ContextFor(kind Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var builder strings.Builder
	builder.WriteString(strings.TrimRight(s.project.Requirements, "\n"))
	for _, dep := range s.context[kind] {
		slot, ok := s.slots[dep]
		if !ok || slot.Status != StatusCompleted {
			continue
		}
		if internalstrings.IsBlank(slot.Result) {
			continue
		}
		fmt.Fprintf(&builder, "\n\n## %s (completed analysis)\n\n%s",
			dep.Title(), strings.TrimRight(slot.Result, "\n"))
	}
	return builder.String()
}

// Clear resets every slot to not-started without changing the project.
// Running slots are reset as well; a unit still in flight carries a token
// the fresh slot no longer matches, so its result is dropped even if the
// slot has been restarted by then.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range Kinds() {
		s.slots[kind] = &Slot{Kind: kind, Status: StatusNotStarted}
	}
}

// begin snapshots the slot's context and transitions it to running. A slot
// may start from not-started, completed, or failed; never while running.
// The returned token identifies this invocation and must be handed back to
// finish.
func (s *Session) begin(kind Kind, startedAt time.Time) (string, uint64, error) {
	contextText := s.ContextFor(kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[kind]
	if !ok {
		return "", 0, formatUnknownKindError(kind)
	}
	if slot.Status == StatusRunning {
		return "", 0, &InvalidStateError{Kind: kind, Status: slot.Status}
	}
	s.seq++
	started := startedAt
	s.slots[kind] = &Slot{Kind: kind, Status: StatusRunning, StartedAt: &started, run: s.seq}
	return contextText, s.seq, nil
}

// finish atomically records the terminal state of the run identified by
// token. The transition is a no-op when the slot is no longer running or is
// owned by a different invocation, which happens after Clear and after a
// Clear-then-restart.
func (s *Session) finish(kind Kind, token uint64, result string, runErr error, finishedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[kind]
	if !ok || slot.Status != StatusRunning || slot.run != token {
		return
	}
	finished := finishedAt
	slot.FinishedAt = &finished
	if runErr != nil {
		slot.Status = StatusFailed
		slot.Err = runErr.Error()
		slot.Result = ""
		return
	}
	slot.Status = StatusCompleted
	slot.Result = result
	slot.Err = ""
}
