package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	domainauth "github.com/target/siperu-booking/internal/domain/auth"
	"github.com/target/siperu-booking/internal/domain/view"
	apperrors "github.com/target/siperu-booking/internal/errors"
	"github.com/target/siperu-booking/internal/service"
)

func (a *app) newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.prompt("Email", email, false); err != nil {
				return err
			}
			if password, err = a.prompt("Password", password, true); err != nil {
				return err
			}

			p, err := a.withSpinner(cmd.Context(), "Signing in", func(ctx context.Context) (domainauth.Principal, error) {
				return a.session().Login(ctx, email, password)
			})
			if err != nil {
				return err
			}
			printWelcome(status(cmd), p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func (a *app) newRegisterCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name, err = a.prompt("Full name", name, false); err != nil {
				return err
			}
			if email, err = a.prompt("Email", email, false); err != nil {
				return err
			}
			if password, err = a.prompt("Password", password, true); err != nil {
				return err
			}

			in := service.RegisterInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     domainauth.Role(role),
			}
			if parsed, ok := domainauth.ParseRole(role); ok {
				in.Role = parsed
			}

			p, err := a.withSpinner(cmd.Context(), "Creating account", func(ctx context.Context) (domainauth.Principal, error) {
				return a.session().Register(ctx, in)
			})
			if err != nil {
				return err
			}
			printWelcome(status(cmd), p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVarP(&role, "role", "r", string(domainauth.RoleUser), "Account role: user or admin")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wasSignedIn := a.session().State().IsAuthenticated()
			if err := a.session().Logout(cmd.Context()); err != nil {
				return err
			}
			if wasSignedIn {
				status(cmd).success.Println("Logged out successfully")
			} else {
				status(cmd).info.Println("Not signed in")
			}
			return nil
		},
	}
}

// prompt returns value, asking for it interactively when it is empty.
func (a *app) prompt(label, value string, secret bool) (string, error) {
	if value != "" || a.nonInteractive {
		return value, nil
	}
	input := pterm.DefaultInteractiveTextInput
	if secret {
		input = *input.WithMask("*")
	}
	answer, err := input.Show(label)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeInvalidInput, "read %s", label)
	}
	return answer, nil
}

// withSpinner shows a spinner while the session is authenticating.
func (a *app) withSpinner(
	ctx context.Context,
	text string,
	fn func(context.Context) (domainauth.Principal, error),
) (domainauth.Principal, error) {
	if a.nonInteractive {
		return fn(ctx)
	}

	var spinner *pterm.SpinnerPrinter
	unsubscribe := a.session().Subscribe(func(st domainauth.State) {
		switch {
		case st.Kind == domainauth.Authenticating && spinner == nil:
			spinner, _ = pterm.DefaultSpinner.Start(text + "...")
		case st.Kind != domainauth.Authenticating && spinner != nil:
			_ = spinner.Stop()
			spinner = nil
		}
	})
	defer unsubscribe()

	return fn(ctx)
}

func printWelcome(out statusPrinters, p domainauth.Principal) {
	out.success.Printfln("Welcome, %s (%s)", p.Name, p.Role.Label())
	out.info.Printfln("Home screen: %s", view.DefaultView(p.Role))
}
