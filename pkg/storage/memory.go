package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the snapshot in process memory.
// Useful for testing or when persistence should be disabled.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
	set  bool
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved snapshot.
func (s *MemoryStore) Load(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, false, nil
	}
	return slices.Clone(s.data), true, nil
}

// Save stores a copy of data.
func (s *MemoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	s.set = true
	return nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
