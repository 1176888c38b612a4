package commands

import (
	"github.com/spf13/cobra"

	"primis/internal/forms"
)

func passwordCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Forgot, reset or change a password",
	}

	forgot := &cobra.Command{
		Use:   "forgot EMAIL",
		Short: "Ask for a password-reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.ForgotPassword{Email: args[0]}
			if err := forms.Validate(form); err != nil {
				return err
			}
			raw, err := c.wire.API.ForgotPassword(cmd.Context(), form.Email)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}

	var token string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password using the token from the reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.ResetPassword{Token: token}
			var err error
			if form.NewPassword, err = promptPassword(cmd, "New password: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = promptPassword(cmd, "Confirm new password: "); err != nil {
				return err
			}
			if err := forms.Validate(form); err != nil {
				return err
			}
			raw, err := c.wire.API.ResetPassword(cmd.Context(), form.Request())
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	reset.Flags().StringVar(&token, "token", "", "reset token")
	_ = reset.MarkFlagRequired("token")

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			var form forms.ChangePassword
			var err error
			if form.CurrentPassword, err = promptPassword(cmd, "Current password: "); err != nil {
				return err
			}
			if form.NewPassword, err = promptPassword(cmd, "New password: "); err != nil {
				return err
			}
			if form.ConfirmPassword, err = promptPassword(cmd, "Confirm new password: "); err != nil {
				return err
			}
			if err := forms.Validate(form); err != nil {
				return err
			}
			raw, err := c.wire.API.ChangePassword(cmd.Context(), form.Request())
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}

	cmd.AddCommand(forgot, reset, change)
	return cmd
}
