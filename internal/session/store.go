// Package session owns the one persisted bearer token. The store has no
// expiry logic on purpose: the only authority on token validity is a 401
// from the service.
package session

import "sync"

// Store is the single source of truth for "am I authenticated". A Write is
// visible to every subsequent Read in the process and, for persistent
// implementations, to the next process as well.
type Store interface {
	// Read returns the current token, or empty when logged out.
	Read() (string, error)
	// Write replaces the persisted token. Writing empty is a logical logout.
	Write(token string) error
	// Clear removes the persisted token entirely.
	Clear() error
}

// MemoryStore keeps the token in memory only. Used by tests and by callers
// that explicitly opt out of persistence.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Write("")
}
