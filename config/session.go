package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where the signed-in principal is persisted.
type SessionBackend string

const (
	// SessionBackendMemory keeps the session for the life of the process only.
	SessionBackendMemory SessionBackend = "memory"
	// SessionBackendFile writes one JSON file per key under SessionConfig.Dir.
	SessionBackendFile SessionBackend = "file"
	// SessionBackendSQLite stores records in a local SQLite database.
	SessionBackendSQLite SessionBackend = "sqlite"
	// SessionBackendRedis stores records in Redis.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "file", "sqlite", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: memory, file, sqlite, redis)", v)
	}
}

// Durable reports whether sessions survive a process restart.
func (b SessionBackend) Durable() bool {
	return b != SessionBackendMemory
}

// SessionConfig controls persistence of the signed-in principal.
type SessionConfig struct {
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"file"`

	// Key is the storage slot for the session record.
	Key string `env:"SESSION_KEY" envDefault:"user"`

	// Dir is the file backend directory. Empty means ~/.siperu.
	Dir string `env:"SESSION_DIR"`

	// SQLitePath is the sqlite backend database. Empty means <Dir>/sessions.db.
	SQLitePath string `env:"SESSION_SQLITE_PATH"`

	// RedisPrefix namespaces session keys in Redis.
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"siperu:session:"`

	// EncryptionKey seals records at rest when set. A 64-character hex
	// string is used as the AES-256 key; anything else is hashed.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`

	// TTL expires persisted sessions. Zero keeps them until logout.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`
}

// Sanitize normalises session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = SessionBackendFile
	}
	c.Key = strings.TrimSpace(c.Key)
	if c.Key == "" {
		c.Key = "user"
	}
	c.Dir = strings.TrimSpace(c.Dir)
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	if c.TTL < 0 {
		c.TTL = 0
	}
}
