package core

import (
	"sort"
	"sync"
	"time"
)

// Session is the state scope of a single Runner invocation. It owns the
// shared key/value store agents publish their results into. It is safe for
// concurrent access.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - Snapshot returns a copy safe to read while the session keeps mutating
//   - MergeState applies fan-in deltas in declared order and reports keys
//     written by more than one delta
//   - Clone performs deep copies of maps for safe divergence.
type Session struct {
	ID       string            `json:"id"`
	State    map[string]any    `json:"state"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`
	mu       sync.RWMutex
}

// NewSession creates an empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, State: map[string]any{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair, overwriting any previous value.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// Snapshot returns a copy of the state map. Parallel children read from the
// snapshot taken at fan-out time; they must never mutate it.
func (s *Session) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]any, len(s.State))
	for k, v := range s.State {
		snap[k] = v
	}
	return snap
}

// MergeState applies the deltas in order, later deltas winning on key
// collision. Keys written by more than one delta are returned sorted so the
// caller can surface the collision instead of resolving it silently.
func (s *Session) MergeState(deltas []map[string]any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	writes := map[string]int{}
	for _, delta := range deltas {
		for k, v := range delta {
			writes[k]++
			s.State[k] = v
		}
	}
	if len(writes) > 0 {
		s.Updated = time.Now()
	}

	var collisions []string
	for k, n := range writes {
		if n > 1 {
			collisions = append(collisions, k)
		}
	}
	sort.Strings(collisions)
	return collisions
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, State: make(map[string]any, len(s.State)), Created: s.Created, Updated: s.Updated, Metadata: make(map[string]string, len(s.Metadata))}
	for k, v := range s.State {
		clone.State[k] = v
	}
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// SessionStore manages session lifecycle for a Runner. Implementations must
// be safe for concurrent use.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	Delete(id string) error
}
