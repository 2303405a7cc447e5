package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/siperu-booking/config"
	"github.com/target/siperu-booking/internal/adapters/demoauth"
	"github.com/target/siperu-booking/internal/ports"
	"github.com/target/siperu-booking/internal/service"
)

// SessionDeps contains dependencies for the session service.
type SessionDeps struct {
	Auth    config.AuthConfig
	Session config.SessionConfig
	Storage ports.SessionStorage
	Logger  *slog.Logger
}

// BuildSessionService creates the session service backed by the demo
// credential provider.
func BuildSessionService(deps SessionDeps) (*service.SessionService, error) {
	if deps.Storage == nil {
		return nil, errors.New("session storage is required")
	}

	prov, err := demoauth.NewProvider(demoauth.Config{
		AdminEmail:        deps.Auth.AdminEmail,
		AdminPassword:     deps.Auth.AdminPassword,
		AdminName:         deps.Auth.AdminName,
		MinPasswordLength: deps.Auth.MinPasswordLength,
		Latency:           deps.Auth.LoginLatency,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth provider: %w", err)
	}

	svc, err := service.NewSessionService(service.SessionServiceOptions{
		Provider:          prov,
		Storage:           deps.Storage,
		Logger:            deps.Logger,
		Key:               deps.Session.Key,
		MinPasswordLength: deps.Auth.MinPasswordLength,
		SessionTTL:        deps.Session.TTL,
		LoginTimeout:      deps.Auth.LoginTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create session service: %w", err)
	}
	return svc, nil
}
