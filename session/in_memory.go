package session

import (
	"errors"
	"sync"

	"github.com/hupe1980/agentflow/core"
)

// ErrNotFound is returned when the requested session does not exist.
var ErrNotFound = errors.New("session not found")

// InMemoryStore is a volatile SessionStore keeping sessions in a process
// local map. It is the default backend of the runner, where a session lives
// exactly as long as one run.
//
// Create hands out the live session: the runner and the store share the
// instance for the duration of the run. Get returns a clone, so inspection
// never races the run mutating state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create allocates a fresh session under the given id and returns it. An
// existing session with the same id is replaced.
func (s *InMemoryStore) Create(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess, nil
}

// Get returns a clone of the stored session, or ErrNotFound.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions the store currently holds.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
