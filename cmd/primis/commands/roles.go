package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"primis/internal/domain"
)

var errForbidden = errors.New("not allowed for your role")

// requireRole is requireLogin plus a local role check, so a wrong role gets
// a readable error instead of the backend's 403.
func (c *cli) requireRole(allowed func(domain.UserType) bool, action string) error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	if ut := c.session().Snapshot().UserType; !allowed(ut) {
		return fmt.Errorf("%w: a %s cannot %s", errForbidden, ut.DisplayName(), action)
	}
	return nil
}

// gated runs check before each command's RunE.
func gated(check func() error, cmds ...*cobra.Command) []*cobra.Command {
	for _, cmd := range cmds {
		run := cmd.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if err := check(); err != nil {
				return err
			}
			return run(cmd, args)
		}
	}
	return cmds
}
