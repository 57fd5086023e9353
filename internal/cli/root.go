// Package cli implements the notate command. It shares the dashboard's token
// slot, so logging in or out here is seen by a running dashboard.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/notate-dashboard/internal/app"
	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	verbose bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "notate",
		Short: "Notate dashboard session tools",
		Long: `notate manages the Notate dashboard session from a terminal.

The token is kept in the same slot the dashboard server reads (a file under the
user config directory by default, or Redis), so a login or logout here is
observed by every running dashboard.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c := config.Load(opts.envFile)
			logOut := io.Discard
			if opts.verbose || cmd.Name() == "serve" {
				logOut = cmd.ErrOrStderr()
			}
			app.SetupLogging(c, logOut)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "write logs to stderr")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newMenuCmd(),
		newServeCmd(),
		newWatchCmd(),
	)
	return rootCmd
}

// ExecuteContext runs the command tree
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// newApp builds the session for a command. Forced navigations are printed
// instead of being sent to browser tabs.
func newApp(cmd *cobra.Command) (*app.App, error) {
	out := cmd.OutOrStdout()
	return app.New(config.New(), session.WithNavigator(session.NavigatorFunc(func(path string) {
		fmt.Fprintf(out, "-> %s\n", path)
	})))
}

// withApp runs fn with a fresh app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(a *app.App) error) (err error) {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}
