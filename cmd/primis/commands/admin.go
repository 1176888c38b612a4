package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"primis/internal/api"
	"primis/internal/domain"
	"primis/internal/forms"
)

func parseUserType(arg string) (domain.UserType, error) {
	t := domain.UserType(arg)
	if !t.Valid() {
		return "", fmt.Errorf("unknown user type %q (want student, teacher, admin or parent)", arg)
	}
	return t, nil
}

func adminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator dashboards and user management",
	}

	limited := func(use, short string, call func(*api.Client, context.Context, int) (json.RawMessage, error)) *cobra.Command {
		var limit int
		sub := plainCommand(c, use, short, func(a *api.Client, ctx context.Context) (json.RawMessage, error) {
			return call(a, ctx, limit)
		})
		sub.Flags().IntVar(&limit, "limit", 10, "maximum number of rows")
		return sub
	}

	analytics := &cobra.Command{
		Use:       "analytics KIND",
		Short:     "Show revenue, enrollment or attendance analytics",
		Args:      cobra.ExactArgs(1),
		ValidArgs: api.AnalyticsKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			raw, err := c.wire.API.Analytics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}

	var active bool
	setStatus := &cobra.Command{
		Use:   "set-status TYPE ID",
		Short: "Activate or deactivate an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			userType, err := parseUserType(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			raw, err := c.wire.API.SetUserStatus(cmd.Context(), userType, id, active)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	setStatus.Flags().BoolVar(&active, "active", true, "whether the account may sign in")

	deleteUser := &cobra.Command{
		Use:   "delete-user TYPE ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			userType, err := parseUserType(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := c.wire.API.DeleteUser(cmd.Context(), userType, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", userType, id)
			return nil
		},
	}

	adminOnly := func() error {
		return c.requireRole(domain.UserType.HasAdminPrivileges, "use admin commands")
	}
	cmd.AddCommand(gated(adminOnly,
		plainCommand(c, "stats", "Show platform totals", (*api.Client).AdminStats),
		limited("users", "List recently created accounts", (*api.Client).RecentUsers),
		limited("pending-payments", "List payments awaiting confirmation", (*api.Client).PendingPayments),
		limited("activity", "List recent activity", (*api.Client).RecentActivity),
		analytics,
		setStatus,
		deleteUser,
		createUserCmd(c),
	)...)
	return cmd
}

// createUserCmd registers teacher, admin or parent accounts, which only an
// administrator may do.
func createUserCmd(c *cli) *cobra.Command {
	var form forms.Register
	cmd := &cobra.Command{
		Use:       "create-user TYPE",
		Short:     "Create a teacher, admin or parent account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"teacher", "admin", "parent"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			userType, err := parseUserType(args[0])
			if err != nil {
				return err
			}
			if userType == domain.UserTypeStudent {
				return fmt.Errorf("students register themselves with `primis register`")
			}
			if form.Password == "" {
				if form.Password, err = promptPassword(cmd, "Password for the new account: "); err != nil {
					return err
				}
			}
			form.ConfirmPassword = form.Password
			if err := forms.Validate(form); err != nil {
				return err
			}
			raw, err := c.wire.API.RegisterRole(cmd.Context(), userType, form.Data())
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "initial password (prompted when empty)")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
