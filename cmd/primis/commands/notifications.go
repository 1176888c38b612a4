package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"primis/internal/api"
)

func notificationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and manage notifications",
	}

	var unread bool
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			params := map[string]any{}
			if unread {
				params["unread_only"] = true
			}
			if limit > 0 {
				params["limit"] = limit
			}
			raw, err := c.wire.API.Notifications(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	list.Flags().IntVar(&limit, "limit", 0, "maximum number to show")

	count := &cobra.Command{
		Use:   "count",
		Short: "Show unread and total counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			n, err := c.wire.API.NotificationCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread of %d\n", n.UnreadCount, n.TotalCount)
			return nil
		},
	}

	read := idCommand(c, "read ID", "Mark a notification as read", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return nil, a.MarkNotificationRead(ctx, id)
	})
	readAll := plainCommand(c, "read-all", "Mark every notification as read", func(a *api.Client, ctx context.Context) (json.RawMessage, error) {
		return nil, a.MarkAllNotificationsRead(ctx)
	})
	del := idCommand(c, "delete ID", "Delete a notification", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return nil, a.DeleteNotification(ctx, id)
	})

	prefs := plainCommand(c, "prefs", "Show notification preferences", (*api.Client).NotificationPreferences)
	setPrefs := &cobra.Command{
		Use:   "set JSON",
		Short: "Replace notification preferences with the given JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			if !json.Valid([]byte(args[0])) {
				return fmt.Errorf("preferences must be valid JSON")
			}
			raw, err := c.wire.API.UpdateNotificationPreferences(cmd.Context(), json.RawMessage(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	prefs.AddCommand(setPrefs)

	cmd.AddCommand(list, count, read, readAll, del, prefs)
	return cmd
}
