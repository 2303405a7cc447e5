// Package mocks provides mock implementations for testing the session core.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	storage := mocks.NewMockSessionStorage(ctrl)
//	storage.EXPECT().Read(gomock.Any(), "user").Return(nil, apperrors.NotFound("missing"))
package mocks

// Generate mocks for the AuthProvider and SessionStorage interfaces from internal/ports.
// AuthProvider: Authenticate, Enroll
// SessionStorage: Read, Write, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go github.com/target/siperu-booking/internal/ports AuthProvider,SessionStorage
