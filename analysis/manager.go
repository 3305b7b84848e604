package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ManagerOptions configures a slot manager.
// Nil fields use defaults.
type ManagerOptions struct {
	// Logger receives structured analysis log entries.
	Logger Logger
	// Now supplies timestamps, for tests.
	Now func() time.Time
}

// Manager drives the session's analysis slots without blocking the caller.
// Each slot runs in its own background goroutine, at most one live unit per
// slot, and all slot mutation funnels through the manager's start/complete
// transitions.
type Manager struct {
	session *Session
	runner  *Runner
	logger  Logger
	now     func() time.Time

	mu   sync.Mutex
	live map[Kind]chan struct{}
}

// NewManager creates a manager for the given session and runner.
func NewManager(session *Session, runner *Runner, opts ManagerOptions) (*Manager, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		session: session,
		runner:  runner,
		logger:  logger,
		now:     now,
		live:    make(map[Kind]chan struct{}),
	}, nil
}

// Session returns the session the manager drives.
func (m *Manager) Session() *Session {
	return m.session
}

// Start transitions the slot to running and launches its analysis in the
// background. Start never runs the task inline: after it returns, the slot
// is observably running even if the underlying call would complete
// instantly. Starting a slot that is already running fails with
// *InvalidStateError and leaves the slot unchanged.
func (m *Manager) Start(kind Kind) error {
	if !kind.IsValid() {
		return formatUnknownKindError(kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	contextText, token, err := m.session.begin(kind, m.now())
	if err != nil {
		return err
	}
	done := make(chan struct{})
	m.live[kind] = done
	go m.run(kind, token, contextText, done)
	return nil
}

// Status returns the slot's current status. The read is non-blocking.
func (m *Manager) Status(kind Kind) (Status, error) {
	slot, err := m.session.Slot(kind)
	if err != nil {
		return "", err
	}
	return slot.Status, nil
}

// Result returns the slot's stored result, if the slot has completed.
func (m *Manager) Result(kind Kind) (string, bool) {
	slot, err := m.session.Slot(kind)
	if err != nil || slot.Status != StatusCompleted {
		return "", false
	}
	return slot.Result, true
}

// Wait blocks until the slot's current run completes. It returns
// immediately when the slot is not running. Pollers should use Status
// instead; Wait serves the one-shot path and tests.
func (m *Manager) Wait(kind Kind) {
	m.mu.Lock()
	done, ok := m.live[kind]
	m.mu.Unlock()
	if !ok {
		return
	}
	<-done
}

// WaitAll blocks until every live slot completes.
func (m *Manager) WaitAll() {
	for _, kind := range Kinds() {
		m.Wait(kind)
	}
}

// Running reports whether any slot currently has a live unit.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live) > 0
}

// Clear resets every slot to not-started. The project is unchanged; results
// from units still in flight are dropped when they land.
func (m *Manager) Clear() {
	m.session.Clear()
}

func (m *Manager) run(kind Kind, token uint64, contextText string, done chan struct{}) {
	startedAt := m.now()
	var result string
	var runErr error
	defer func() {
		if recovered := recover(); recovered != nil {
			runErr = fmt.Errorf("analysis panic: %v", recovered)
		}
		m.complete(kind, token, result, runErr, done)
		if runErr != nil {
			m.logger.Failure(FailureLog{Kind: kind, Message: runErr.Error()})
			return
		}
		m.logger.Result(ResultLog{Kind: kind, Text: result, Duration: m.now().Sub(startedAt)})
	}()

	result, runErr = m.runner.Run(context.Background(), kind, contextText)
}

func (m *Manager) complete(kind Kind, token uint64, result string, runErr error, done chan struct{}) {
	m.mu.Lock()
	m.session.finish(kind, token, result, runErr, m.now())
	if m.live[kind] == done {
		delete(m.live, kind)
	}
	m.mu.Unlock()
	close(done)
}
