// Package memory holds a conversation's turn history in process. The store is
// the durable record; memory is the working copy the selection scan reads, so
// a chat request never touches the database for history it already has.
package memory

import (
	"sync"

	"github.com/reyharighy/cba/store"
)

// TurnMemory is an append-only, ordered view of a single conversation's
// turns. Safe for concurrent use.
type TurnMemory struct {
	mu    sync.RWMutex
	turns []*store.Turn
}

// New creates an empty TurnMemory.
func New() *TurnMemory {
	return &TurnMemory{}
}

// Load replaces the held history, typically from a store read at session
// start. Turns are kept in the given order.
func (m *TurnMemory) Load(turns []*store.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = make([]*store.Turn, len(turns))
	copy(m.turns, turns)
}

// Append adds a completed turn to the end of the history.
func (m *TurnMemory) Append(turn *store.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
}

// All returns a copy of the history in chronological order. Mutating the
// returned slice does not affect the memory.
func (m *TurnMemory) All() []*store.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*store.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of held turns.
func (m *TurnMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.turns)
}

// Last returns the most recent turn, or nil when the history is empty.
func (m *TurnMemory) Last() *store.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.turns) == 0 {
		return nil
	}
	return m.turns[len(m.turns)-1]
}
