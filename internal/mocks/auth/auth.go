// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sync"

	"github.com/target/siperu-booking/internal/adapters/memstore"
	domainauth "github.com/target/siperu-booking/internal/domain/auth"
	apperrors "github.com/target/siperu-booking/internal/errors"
	"github.com/target/siperu-booking/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionStorage = (*FaultyStorage)(nil)
)

// MockAuthProvider simulates an identity backend for tests.
// When Gate is set, every call signals Entered (if set) and then blocks until
// Gate is closed or receives, which lets tests hold an attempt in flight.
type MockAuthProvider struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (domainauth.Principal, error)
	EnrollFunc       func(ctx context.Context, in ports.EnrollInput) (domainauth.Principal, error)

	Gate    chan struct{}
	Entered chan struct{}

	// DefaultUser is returned by Authenticate when AuthenticateFunc is nil.
	DefaultUser domainauth.Principal

	mu    sync.Mutex
	calls int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		DefaultUser: domainauth.Principal{
			ID:         "mock-user-1",
			Name:       "mock",
			Email:      "mock@example.com",
			Role:       domainauth.RoleUser,
			Department: "User Department",
		},
	}
}

// Calls returns how many times the provider was invoked.
func (m *MockAuthProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockAuthProvider) wait(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return apperrors.MapContextError(ctx.Err())
	}
}

func (m *MockAuthProvider) Authenticate(ctx context.Context, email, password string) (domainauth.Principal, error) {
	if err := m.wait(ctx); err != nil {
		return domainauth.Principal{}, err
	}
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	user := m.DefaultUser
	if email != "" {
		user.Email = email
	}
	return user, nil
}

func (m *MockAuthProvider) Enroll(ctx context.Context, in ports.EnrollInput) (domainauth.Principal, error) {
	if err := m.wait(ctx); err != nil {
		return domainauth.Principal{}, err
	}
	if m.EnrollFunc != nil {
		return m.EnrollFunc(ctx, in)
	}
	return domainauth.Principal{
		ID:    "mock-enrolled-1",
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	}, nil
}

// FaultyStorage is an in-memory session storage with injectable failures.
type FaultyStorage struct {
	*memstore.Store

	mu        sync.Mutex
	ReadErr   error
	WriteErr  error
	DeleteErr error
	reads     int
	writes    int
	deletes   int
}

// NewFaultyStorage creates an empty FaultyStorage that behaves like memstore until errors are set.
func NewFaultyStorage() *FaultyStorage {
	return &FaultyStorage{Store: memstore.New()}
}

// Seed writes raw bytes under key, bypassing injected errors.
func (f *FaultyStorage) Seed(key string, data []byte) {
	_ = f.Store.Write(context.Background(), key, data)
}

// Has reports whether key currently holds a value.
func (f *FaultyStorage) Has(key string) bool {
	_, err := f.Store.Read(context.Background(), key)
	return err == nil
}

// Reads returns the number of Read calls.
func (f *FaultyStorage) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Writes returns the number of Write calls.
func (f *FaultyStorage) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Deletes returns the number of Delete calls.
func (f *FaultyStorage) Deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

func (f *FaultyStorage) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	f.reads++
	err := f.ReadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.Read(ctx, key)
}

func (f *FaultyStorage) Write(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.writes++
	err := f.WriteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Write(ctx, key, data)
}

func (f *FaultyStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deletes++
	err := f.DeleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Delete(ctx, key)
}
