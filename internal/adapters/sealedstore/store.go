// Package sealedstore encrypts session records before they reach a backend.
package sealedstore

import (
	"context"

	apperrors "github.com/target/siperu-booking/internal/errors"
	"github.com/target/siperu-booking/internal/ports"
)

var _ ports.SessionStorage = (*Store)(nil)

// Store wraps a SessionStorage and seals every value it writes.
type Store struct {
	inner  ports.SessionStorage
	sealer Sealer
}

// New wraps inner with sealer.
func New(inner ports.SessionStorage, sealer Sealer) *Store {
	return &Store{inner: inner, sealer: sealer}
}

// Read returns the opened record. A record that fails to open is reported as
// corrupted_session_data.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := s.sealer.Open(key, sealed)
	if err != nil {
		return nil, apperrors.CorruptedSessionData(err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	sealed, err := s.sealer.Seal(key, data)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "seal session record")
	}
	return s.inner.Write(ctx, key, sealed)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
