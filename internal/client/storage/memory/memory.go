// Package memory provides an in-memory KVStore implementation.
// It is used in tests as a drop-in substitute for the BoltDB store.
package memory

import (
	"context"
	"sync"

	"github.com/avykov/authkeeper/internal/client/storage"
)

// Store is an in-memory implementation of storage.KVStore
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// Compile-time check that Store implements storage.KVStore
var _ storage.KVStore = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the value for key or storage.ErrKeyNotFound
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Delete removes key; deleting a missing key is a no-op
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys (test helper)
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
