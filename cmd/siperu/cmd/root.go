// Package cmd implements the siperu command tree.
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/target/siperu-booking/internal/service"
)

// Runtime is the per-invocation wiring handed to commands.
type Runtime struct {
	Session *service.SessionService
	Logger  *slog.Logger
	Close   func() error
}

// SetupFunc builds the Runtime. It runs once, before the selected command.
type SetupFunc func(ctx context.Context) (*Runtime, error)

type app struct {
	setup          SetupFunc
	rt             *Runtime
	nonInteractive bool
}

// Execute runs the command tree with args and releases the runtime afterwards.
func Execute(ctx context.Context, setup SetupFunc, args []string) error {
	a := &app{setup: setup}
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if a.rt != nil && a.rt.Close != nil {
		if cerr := a.rt.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "siperu",
		Short: "SIPERU booking - session and navigation client",
		Long: `siperu signs you in to the SIPERU resource-booking system and tells you
which screens your role can open. The session is kept between invocations
by the configured SESSION_BACKEND.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("SIPERU_NON_INTERACTIVE") == "1" {
				a.nonInteractive = true
			}
			rt, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			a.rt = rt
			rt.Session.Restore(cmd.Context())
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&a.nonInteractive, "non-interactive", false,
		"Disable prompts and spinners (also set via SIPERU_NON_INTERACTIVE=1)")

	root.AddCommand(
		a.newLoginCmd(),
		a.newRegisterCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newNavigateCmd(),
		a.newMenuCmd(),
	)
	return root
}

func (a *app) session() *service.SessionService {
	return a.rt.Session
}
