package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"primis/internal/forms"
)

func loginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}
			form := forms.Login{Email: email, Password: password}
			if err := forms.Validate(form); err != nil {
				return err
			}

			creds := form.Credentials()
			res, err := c.session().Login(cmd.Context(), creds.Email, creds.Password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s (%s)\n", res.User.Name, res.UserType.DisplayName())
			fmt.Fprintf(out, "Dashboard: %s\n", res.UserType.DashboardPath())
			if res.ProfileFetchDegraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: full profile unavailable, showing details from the login answer.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty; visible in shell history)")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func registerCmd(c *cli) *cobra.Command {
	var form forms.Register
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Password == "" {
				if form.Password, err = promptPassword(cmd, "Password: "); err != nil {
					return err
				}
				if form.ConfirmPassword, err = promptPassword(cmd, "Confirm password: "); err != nil {
					return err
				}
			} else if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}
			if err := forms.Validate(form); err != nil {
				return err
			}
			if _, err := c.session().Register(cmd.Context(), form.Data()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run `primis login` to sign in.\n", form.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "full name")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.Password, "password", "", "password (prompted when empty)")
	f.StringVar(&form.Phone, "phone", "", "phone number")
	f.StringVar(&form.ParentEmail, "parent-email", "", "parent's email")
	f.StringVar(&form.ParentPhone, "parent-phone", "", "parent's phone")
	f.StringVar(&form.DateOfBirth, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&form.Address, "address", "", "home address")
	f.StringVar(&form.EmergencyContact, "emergency-contact", "", "emergency contact name")
	f.StringVar(&form.EmergencyPhone, "emergency-phone", "", "emergency contact phone")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func whoamiCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			snap := c.session().Snapshot()
			if asJSON {
				snap.Token = ""
				return printValue(cmd, snap)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s\n", snap.User.Name)
			fmt.Fprintf(out, "Email: %s\n", snap.User.Email)
			fmt.Fprintf(out, "Role:  %s\n", snap.UserType.DisplayName())
			if id := snap.User.RoleID(snap.UserType); id != 0 {
				fmt.Fprintf(out, "%s ID: %d\n", snap.UserType.DisplayName(), id)
			}
			if exp, ok := c.session().TokenExpiry(); ok {
				fmt.Fprintf(out, "Token expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON (token omitted)")
	return cmd
}
