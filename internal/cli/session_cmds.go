package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jrsteele09/notate-dashboard/internal/app"
	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "NOTATE_PASSWORD"

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Exchange credentials for a session token and store it in the shared slot.

The password can also be given through the NOTATE_PASSWORD environment variable.

Examples:
  notate login --email teacher@notate.test --password notate123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnvVar)
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			return withApp(cmd, func(a *app.App) error {
				raw, err := a.API.Login(cmd.Context(), email, password)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				st, err := a.Session.SetToken(cmd.Context(), raw)
				if err != nil {
					return err
				}
				if !st.Authenticated() {
					return errors.New("login failed: the server returned an unusable token")
				}
				printState(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				if err := a.Session.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity carried by the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				printState(cmd.OutOrStdout(), a.Session.Refresh(cmd.Context()))
				return nil
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.New())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print session changes made by any client until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				out := cmd.OutOrStdout()
				unwatch := a.Session.Watch(func(st session.State) {
					fmt.Fprintf(out, "[%s] ", time.Now().Format(time.TimeOnly))
					printState(out, st)
				})
				defer unwatch()

				a.Session.Start(cmd.Context())
				<-cmd.Context().Done()
				return nil
			})
		},
	}
}

func printState(out io.Writer, st session.State) {
	switch {
	case st.IsLoading:
		fmt.Fprintln(out, "Loading")
	case !st.Authenticated():
		fmt.Fprintln(out, "Not logged in")
	default:
		landing, ok := routes.LandingFor(st.User.Role)
		if !ok {
			landing = "none (unrecognised role)"
		}
		fmt.Fprintf(out, "Logged in as %s (%s), landing page %s", st.User.ID, st.User.Role, landing)
		if !st.User.ExpiresAt.IsZero() {
			fmt.Fprintf(out, ", expires %s", st.User.ExpiresAt.Local().Format(time.RFC1123))
		}
		fmt.Fprintln(out)
	}
}
