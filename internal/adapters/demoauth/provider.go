// Package demoauth provides a config-driven AuthProvider that reproduces the
// booking UI's demo credential rules. It stands in for a real identity backend.
package demoauth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	domainauth "github.com/target/siperu-booking/internal/domain/auth"
	apperrors "github.com/target/siperu-booking/internal/errors"
	"github.com/target/siperu-booking/internal/ports"
)

const (
	defaultMinPasswordLength = 6
	departmentManagement     = "Management"
	departmentUser           = "User Department"
)

// principalNamespace seeds the stable per-account principal IDs.
var principalNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://siperu.booking/principals"))

// Config controls the demo provider behavior.
// AdminEmail and AdminPassword are required.
type Config struct {
	AdminEmail        string
	AdminPassword     string
	AdminName         string        // default "Admin User"
	MinPasswordLength int           // default 6 when zero
	Latency           time.Duration // simulated round trip, zero disables
}

// Provider implements ports.AuthProvider with the demo rule set:
// the reserved admin pair yields an admin, any address containing "@" with a
// long enough password yields a user named after the address's local part.
type Provider struct {
	adminEmail    string
	adminPassword string
	adminName     string
	minPassword   int
	latency       time.Duration
}

// NewProvider constructs a demo auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.AdminEmail == "" {
		return nil, errors.New("demo auth: AdminEmail is required")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("demo auth: AdminPassword is required")
	}
	if cfg.Latency < 0 {
		return nil, errors.New("demo auth: Latency must not be negative")
	}
	minLen := cfg.MinPasswordLength
	if minLen <= 0 {
		minLen = defaultMinPasswordLength
	}
	name := cfg.AdminName
	if name == "" {
		name = "Admin User"
	}
	return &Provider{
		adminEmail:    cfg.AdminEmail,
		adminPassword: cfg.AdminPassword,
		adminName:     name,
		minPassword:   minLen,
		latency:       cfg.Latency,
	}, nil
}

// Authenticate applies the demo credential rules after the simulated round trip.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (domainauth.Principal, error) {
	if err := p.roundTrip(ctx); err != nil {
		return domainauth.Principal{}, err
	}
	if email == "" || password == "" {
		return domainauth.Principal{}, apperrors.InvalidCredentials("Email and password are required")
	}

	if email == p.adminEmail && password == p.adminPassword {
		return domainauth.Principal{
			ID:         stableID(domainauth.RoleAdmin, email),
			Name:       p.adminName,
			Email:      email,
			Role:       domainauth.RoleAdmin,
			Department: departmentManagement,
		}, nil
	}

	local, _, found := strings.Cut(email, "@")
	if found && utf8.RuneCountInString(password) >= p.minPassword {
		return domainauth.Principal{
			ID:         stableID(domainauth.RoleUser, email),
			Name:       local,
			Email:      email,
			Role:       domainauth.RoleUser,
			Department: departmentUser,
		}, nil
	}

	return domainauth.Principal{}, apperrors.InvalidCredentials("Invalid email or password")
}

// Enroll issues a fresh principal for a registration. Input is validated by the caller.
func (p *Provider) Enroll(ctx context.Context, in ports.EnrollInput) (domainauth.Principal, error) {
	if err := p.roundTrip(ctx); err != nil {
		return domainauth.Principal{}, err
	}
	if !in.Role.Valid() {
		return domainauth.Principal{}, apperrors.InvalidInput("role", "Role must be user or admin")
	}

	dept := departmentUser
	if in.Role == domainauth.RoleAdmin {
		dept = departmentManagement
	}
	return domainauth.Principal{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: dept,
	}, nil
}

// roundTrip waits out the configured latency unless ctx ends first.
func (p *Provider) roundTrip(ctx context.Context) error {
	if p.latency <= 0 {
		return apperrors.MapContextError(ctx.Err())
	}
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperrors.MapContextError(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func stableID(role domainauth.Role, email string) string {
	return uuid.NewSHA1(principalNamespace, []byte(string(role)+":"+strings.ToLower(email))).String()
}
