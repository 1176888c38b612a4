package commands

import (
	"github.com/spf13/cobra"

	"primis/internal/api"
)

func paymentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Review payments",
	}
	cmd.AddCommand(
		plainCommand(c, "list", "List your payments", (*api.Client).Payments),
		idCommand(c, "student ID", "List a student's payments", (*api.Client).StudentPayments),
		plainCommand(c, "all", "List every payment (administrators)", (*api.Client).AllPayments),
	)
	return cmd
}
