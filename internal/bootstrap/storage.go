package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/target/siperu-booking/config"
	"github.com/target/siperu-booking/internal/adapters/filestore"
	"github.com/target/siperu-booking/internal/adapters/memstore"
	redisadapter "github.com/target/siperu-booking/internal/adapters/redis"
	"github.com/target/siperu-booking/internal/adapters/sealedstore"
	"github.com/target/siperu-booking/internal/adapters/sqlitestore"
	"github.com/target/siperu-booking/internal/ports"
)

const sqliteFileName = "sessions.db"

// StorageConfig contains configuration for the session storage backend.
type StorageConfig struct {
	Session config.SessionConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// SessionStorage is a configured backend plus the release hook for any
// connection it holds.
type SessionStorage struct {
	ports.SessionStorage
	Backend config.SessionBackend
	closers []func() error
}

// Close releases backend connections.
func (s *SessionStorage) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildSessionStorage opens the backend named by cfg.Session.Backend and
// wraps it with record sealing when an encryption key is configured.
func BuildSessionStorage(ctx context.Context, cfg StorageConfig) (*SessionStorage, error) {
	out := &SessionStorage{Backend: cfg.Session.Backend}

	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		out.SessionStorage = memstore.New()

	case config.SessionBackendFile, "":
		dir, err := sessionDir(cfg.Session)
		if err != nil {
			return nil, err
		}
		store, err := filestore.New(dir)
		if err != nil {
			return nil, fmt.Errorf("open file session storage: %w", err)
		}
		out.SessionStorage = store
		out.Backend = config.SessionBackendFile

	case config.SessionBackendSQLite:
		path, err := sqlitePath(cfg.Session)
		if err != nil {
			return nil, err
		}
		store, err := sqlitestore.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session storage: %w", err)
		}
		out.SessionStorage = store
		out.closers = append(out.closers, store.Close)

	case config.SessionBackendRedis:
		client, err := ConnectRedis(ctx, RedisConnConfig{Redis: cfg.Redis, Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		out.SessionStorage = redisadapter.NewSessionStorage(client, redisadapter.Options{
			Prefix: cfg.Session.RedisPrefix,
			TTL:    cfg.Session.TTL,
		})
		out.closers = append(out.closers, client.Close)

	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Session.Backend)
	}

	if cfg.Session.EncryptionKey != "" {
		sealer, err := newSealer(cfg.Session.EncryptionKey)
		if err != nil {
			if cerr := out.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return nil, err
		}
		out.SessionStorage = sealedstore.New(out.SessionStorage, sealer)
	}

	if cfg.Logger != nil {
		cfg.Logger.DebugContext(ctx, "session storage ready",
			"backend", string(out.Backend),
			"durable", out.Backend.Durable(),
			"sealed", cfg.Session.EncryptionKey != "",
		)
	}
	return out, nil
}

func newSealer(secret string) (*sealedstore.AESGCMSealer, error) {
	key, err := sealedstore.KeyFromSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("session encryption key: %w", err)
	}
	return sealedstore.NewAESGCMSealer(key)
}

func sessionDir(cfg config.SessionConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	dir, err := filestore.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("resolve session directory: %w", err)
	}
	return dir, nil
}

func sqlitePath(cfg config.SessionConfig) (string, error) {
	if cfg.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
		return cfg.SQLitePath, nil
	}
	dir, err := sessionDir(cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create session directory: %w", err)
	}
	return filepath.Join(dir, sqliteFileName), nil
}
