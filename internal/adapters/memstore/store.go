// Package memstore holds session records in process memory. Records do not
// survive a restart; use it for tests and throwaway demo runs.
package memstore

import (
	"context"
	"sync"

	apperrors "github.com/target/siperu-booking/internal/errors"
)

// Store is an in-memory ports.SessionStorage.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, apperrors.NotFoundf("session key %q not found", key)
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Write(_ context.Context, key string, data []byte) error {
	if key == "" {
		return apperrors.InvalidInput("key", "session key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
