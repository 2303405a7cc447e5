package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/siperu-booking/internal/domain/auth"
)

// EnrollInput carries the fields of a self-service registration.
type EnrollInput struct {
	Name     string
	Email    string
	Password string
	Role     domainauth.Role
}

// AuthProvider verifies credentials and issues principals.
// Implementations model a remote round trip and must honour ctx.
type AuthProvider interface {
	// Authenticate checks an email/password pair and returns the matching principal.
	Authenticate(ctx context.Context, email, password string) (domainauth.Principal, error)

	// Enroll creates an account from validated input and returns its principal.
	Enroll(ctx context.Context, in EnrollInput) (domainauth.Principal, error)
}

// SessionStorage is the key-value slot the session record lives in.
// Write must be durable and atomic before it returns; Read must reflect the
// latest Write from the same process. Read reports a missing key with a
// not_found AppError.
type SessionStorage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
