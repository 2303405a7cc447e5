package config

import (
	"strings"
	"time"
)

const (
	defaultMinPasswordLength = 6
	defaultLoginTimeout      = 10 * time.Second
)

// AuthConfig groups sign-in policy and the demo credential set.
type AuthConfig struct {
	// AdminEmail and AdminPassword form the reserved administrator pair.
	AdminEmail    string `env:"AUTH_ADMIN_EMAIL"    envDefault:"admin@booking.com"`
	AdminPassword string `env:"AUTH_ADMIN_PASSWORD" envDefault:"admin123"`
	AdminName     string `env:"AUTH_ADMIN_NAME"     envDefault:"Admin User"`

	// MinPasswordLength is the password policy floor in characters.
	MinPasswordLength int `env:"AUTH_MIN_PASSWORD_LENGTH" envDefault:"6"`

	// LoginLatency simulates the remote identity round trip.
	LoginLatency time.Duration `env:"AUTH_LOGIN_LATENCY" envDefault:"0s"`

	// LoginTimeout bounds a single login or register attempt.
	LoginTimeout time.Duration `env:"AUTH_LOGIN_TIMEOUT" envDefault:"10s"`
}

// Sanitize normalises credentials and enforces safe defaults.
func (c *AuthConfig) Sanitize() {
	c.AdminEmail = strings.TrimSpace(c.AdminEmail)
	c.AdminName = strings.TrimSpace(c.AdminName)
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = defaultMinPasswordLength
	}
	if c.LoginLatency < 0 {
		c.LoginLatency = 0
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = defaultLoginTimeout
	}
}
