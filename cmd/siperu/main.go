package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/target/siperu-booking/cmd/siperu/cmd"
	"github.com/target/siperu-booking/internal/bootstrap"
	apperrors "github.com/target/siperu-booking/internal/errors"
)

func main() {
	ctx := context.Background()
	pterm.SetDefaultOutput(os.Stderr)
	if err := cmd.Execute(ctx, setup, os.Args[1:]); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(userMessage(err))
		os.Exit(1) //nolint:forbidigo // CLI must exit with non-zero status when a command fails.
	}
}

// setup loads configuration and wires the session service for one invocation.
func setup(ctx context.Context) (*cmd.Runtime, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := bootstrap.InitLogger(os.Stderr, cfg.LogLevel)

	storage, err := bootstrap.BuildSessionStorage(ctx, bootstrap.StorageConfig{
		Session: cfg.Session,
		Redis:   cfg.Redis,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	svc, err := bootstrap.BuildSessionService(bootstrap.SessionDeps{
		Auth:    cfg.Auth,
		Session: cfg.Session,
		Storage: storage,
		Logger:  logger,
	})
	if err != nil {
		if cerr := storage.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close session storage failed", "error", cerr)
		}
		return nil, err
	}

	if !storage.Backend.Durable() {
		logger.WarnContext(ctx, "session backend is not durable; sign-in lasts for this command only",
			"backend", string(storage.Backend))
	}

	return &cmd.Runtime{
		Session: svc,
		Logger:  logger,
		Close: func() error {
			if cerr := storage.Close(); cerr != nil {
				return fmt.Errorf("close session storage: %w", cerr)
			}
			return nil
		},
	}, nil
}

// userMessage prefers the human-readable message of an application error.
// Internal errors keep their cause since the message alone names only the step.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" && !apperrors.IsInternal(err) {
		return appErr.Message
	}
	slog.Default().Debug("command failed", "error", err)
	return err.Error()
}
