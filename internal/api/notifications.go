package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// NotificationCount is the body of GET /notifications/count.
type NotificationCount struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

func notificationPath(id int64) string { return Prefix + "/notifications/" + strconv.FormatInt(id, 10) }

func (c *Client) Notifications(ctx context.Context, params map[string]any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/notifications", nil, params)
}

func (c *Client) NotificationCount(ctx context.Context) (NotificationCount, error) {
	var out NotificationCount
	err := c.Do(ctx, http.MethodGet, Prefix+"/notifications/count", nil, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, http.MethodPut, notificationPath(id)+"/read", nil, nil)
	return err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodPut, Prefix+"/notifications/read-all", nil, nil)
	return err
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, http.MethodDelete, notificationPath(id), nil, nil)
	return err
}

func (c *Client) NotificationPreferences(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/notifications/preferences", nil, nil)
}

func (c *Client) UpdateNotificationPreferences(ctx context.Context, prefs any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, Prefix+"/notifications/preferences", prefs, nil)
}
