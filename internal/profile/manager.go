package profile

import (
	"log/slog"
	"sync"
)

// maxHistory caps the number of snapshots kept for undo.
const maxHistory = 100

// Manager holds the profile for one editing session. Every mutation goes
// through Dispatch, which replaces the current snapshot with a new one;
// readers always receive a deep copy and never observe a partial update.
type Manager struct {
	mu      sync.RWMutex
	current State
	undo    []State
	redo    []State
	logger  *slog.Logger
}

// NewManager creates a Manager seeded with the initial state.
func NewManager() *Manager {
	return NewManagerWithState(Initial())
}

// NewManagerWithState creates a Manager seeded with s (for tests and
// offline rendering).
func NewManagerWithState(s State) *Manager {
	return &Manager{
		current: s.Clone(),
		logger:  slog.Default(),
	}
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Dispatch applies a to the current state and returns the new snapshot.
// The prior state is pushed onto the undo history and the redo history is
// cleared.
func (m *Manager) Dispatch(a Action) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Reduce(m.current, a)
	m.undo = pushBounded(m.undo, m.current)
	m.redo = nil
	m.current = next

	if a != nil {
		m.logger.Debug("profile action applied", "action", a.Name(), "history", len(m.undo))
	}
	return next.Clone()
}

// Undo restores the state before the last dispatched action. It reports
// false when there is nothing to undo.
func (m *Manager) Undo() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.undo) == 0 {
		return m.current.Clone(), false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = pushBounded(m.redo, m.current)
	m.current = prev
	return prev.Clone(), true
}

// Redo re-applies the last undone action. It reports false when there is
// nothing to redo.
func (m *Manager) Redo() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.redo) == 0 {
		return m.current.Clone(), false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = pushBounded(m.undo, m.current)
	m.current = next
	return next.Clone(), true
}

// History returns the number of available undo and redo steps.
func (m *Manager) History() (undo, redo int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.undo), len(m.redo)
}

// pushBounded appends s, dropping the oldest entry once maxHistory is hit.
// Snapshots are stored as-is: Reduce always returns a fresh copy, so a
// stored state is never mutated afterwards.
func pushBounded(h []State, s State) []State {
	if len(h) >= maxHistory {
		h = append(h[:0:0], h[1:]...)
	}
	return append(h, s)
}
