package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/target/siperu-booking/internal/domain/view"
	apperrors "github.com/target/siperu-booking/internal/errors"
)

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := a.session().CurrentPrincipal()
			if !ok {
				status(cmd).info.Println("Not signed in")
				fmt.Fprintln(cmd.OutOrStdout(), view.Login)
				return nil
			}

			status(cmd).section.Println("Signed in")
			department := p.Department
			if department == "" {
				department = "-"
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
				{"NAME", "EMAIL", "ROLE", "DEPARTMENT"},
				{p.Name, p.Email, p.Role.Label(), department},
			}).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), table)
			fmt.Fprintln(cmd.OutOrStdout(), view.DefaultView(p.Role))
			return nil
		},
	}
}

func (a *app) newNavigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <view>",
		Short: "Resolve which screen opens for a requested view",
		Long: `navigate prints the screen your role lands on when requesting <view>.
Views outside your role resolve to your home screen; without a session every
view resolves to login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested, ok := view.ParseID(args[0])
			if !ok {
				return apperrors.InvalidInput("view", fmt.Sprintf("Unknown view %q", args[0]))
			}

			st := a.session().State()
			resolved := view.Resolve(st, requested)
			if resolved != requested {
				if st.IsAuthenticated() {
					status(cmd).warning.Printfln("%s is not available to %s accounts; opening %s",
						requested, strings.ToLower(st.Principal.Role.Label()), resolved)
				} else {
					status(cmd).warning.Printfln("Sign in to open %s", requested)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}
}

func (a *app) newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the screens available to the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := a.session().CurrentPrincipal()
			if !ok {
				return apperrors.InvalidCredentials("Not signed in. Run `siperu login` first.")
			}

			home := view.DefaultView(p.Role)
			data := pterm.TableData{{"SECTION", "SCREEN", "VIEW", ""}}
			for _, item := range view.Menu(p.Role) {
				marker := ""
				if item.ID == home {
					marker = "home"
				}
				data = append(data, []string{item.Section, item.Label, string(item.ID), marker})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
