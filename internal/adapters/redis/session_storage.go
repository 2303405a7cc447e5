package redis

// Package redis provides the Redis-backed session storage adapter.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/target/siperu-booking/internal/errors"
)

const defaultPrefix = "siperu:session:"

// SessionStorage is a Redis-based session storage for shared deployments.
// A positive TTL lets Redis expire records on its own.
type SessionStorage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Options configures SessionStorage. Zero values fall back to defaults.
type Options struct {
	Prefix string
	TTL    time.Duration
}

// NewSessionStorage creates a new Redis-based session storage.
func NewSessionStorage(client redis.UniversalClient, opts Options) *SessionStorage {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &SessionStorage{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *SessionStorage) Read(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, apperrors.NotFound("session key is empty")
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, apperrors.MapStorageError(err)
	}
	return data, nil
}

// Write stores data under key with a single SET, which Redis applies atomically.
func (s *SessionStorage) Write(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return apperrors.InvalidInput("key", "session key cannot be empty")
	}

	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return apperrors.MapStorageError(err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return apperrors.MapStorageError(err)
	}
	return nil
}
