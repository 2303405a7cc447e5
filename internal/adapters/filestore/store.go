// Package filestore keeps session records as JSON files in a private
// directory, one file per key. Writes go through a temp file and a rename so
// a reader sees either the previous record or the new one, never a torn write.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/target/siperu-booking/internal/errors"
)

const fileExt = ".json"

// Store implements ports.SessionStorage on the local filesystem.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating it with 0700 permissions.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns ~/.siperu, the directory used when none is configured.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}
	return filepath.Join(home, ".siperu"), nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", apperrors.InvalidInput("key", fmt.Sprintf("invalid session key %q", key))
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.MapStorageError(err)
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, apperrors.MapStorageError(err)
	}
	return data, nil
}

// Write replaces the record for key. The data is fsynced before the rename
// and the directory is synced after it, so the record is durable on return.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.MapStorageError(err)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return apperrors.MapStorageError(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperrors.MapStorageError(fmt.Errorf("write temp file: %w", err))
	}
	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return apperrors.MapStorageError(fmt.Errorf("chmod temp file: %w", err))
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperrors.MapStorageError(fmt.Errorf("sync temp file: %w", err))
	}
	if err = tmp.Close(); err != nil {
		return apperrors.MapStorageError(fmt.Errorf("close temp file: %w", err))
	}
	if err = os.Rename(tmpName, p); err != nil {
		return apperrors.MapStorageError(fmt.Errorf("rename session file: %w", err))
	}
	committed = true

	return syncDir(s.dir)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.MapStorageError(err)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.MapStorageError(fmt.Errorf("remove session file: %w", err))
	}
	return syncDir(s.dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return apperrors.MapStorageError(fmt.Errorf("open session directory: %w", err))
	}
	defer d.Close()
	// Some filesystems reject fsync on directories; the rename has already happened.
	_ = d.Sync()
	return nil
}
