package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/notate-dashboard/internal/app"
	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/spf13/cobra"
)

var (
	menuTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	menuItemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	menuHrefStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	menuBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func newMenuCmd() *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the sidebar menu of the logged in role",
		Long: `Show the sidebar menu of the logged in role.

Use --role to preview the menu of any role without a session.

Examples:
  notate menu
  notate menu --role teacher`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if roleFlag != "" {
				role, ok := users.ParseRole(roleFlag)
				if !ok {
					return fmt.Errorf("unknown role %q (want one of %s)", roleFlag, roleList())
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMenu(role))
				return nil
			}

			return withApp(cmd, func(a *app.App) error {
				st := a.Session.Refresh(cmd.Context())
				if !st.Authenticated() {
					return fmt.Errorf("not logged in")
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMenu(st.Role()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&roleFlag, "role", "", "role to preview ("+roleList()+")")
	return cmd
}

func renderMenu(role users.Role) string {
	entries := routing.MenuFor(role)
	if len(entries) == 0 {
		return fmt.Sprintf("No menu for role %q", role)
	}

	var b strings.Builder
	b.WriteString(menuTitleStyle.Render("Notate · " + role.String()))
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(menuItemStyle.Render(e.Title + "  " + menuHrefStyle.Render(e.Href)))
	}
	return menuBoxStyle.Render(b.String())
}

func roleList() string {
	var names []string
	for _, r := range users.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
