package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"primis/internal/domain"
)

// AnalyticsKinds are the dashboards the backend serves under /admin/analytics.
var AnalyticsKinds = []string{"revenue", "enrollment", "attendance"}

func limitParam(limit int) map[string]any {
	if limit <= 0 {
		return nil
	}
	return map[string]any{"limit": limit}
}

func adminUserPath(userType domain.UserType, id int64) string {
	return Prefix + "/admin/users/" + userType.String() + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) AdminStats(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/admin/stats", nil, nil)
}

func (c *Client) RecentUsers(ctx context.Context, limit int) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/admin/users/recent", nil, limitParam(limit))
}

func (c *Client) PendingPayments(ctx context.Context, limit int) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/admin/payments/pending", nil, limitParam(limit))
}

func (c *Client) RecentActivity(ctx context.Context, limit int) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/admin/activity/recent", nil, limitParam(limit))
}

// Analytics fetches one of AnalyticsKinds. Other kinds are left for the
// backend to reject.
func (c *Client) Analytics(ctx context.Context, kind string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/admin/analytics/"+kind, nil, nil)
}

func (c *Client) SetUserStatus(ctx context.Context, userType domain.UserType, id int64, active bool) (json.RawMessage, error) {
	body := struct {
		IsActive bool `json:"is_active"`
	}{IsActive: active}
	return c.Request(ctx, http.MethodPut, adminUserPath(userType, id)+"/status", body, nil)
}

func (c *Client) DeleteUser(ctx context.Context, userType domain.UserType, id int64) error {
	_, err := c.Request(ctx, http.MethodDelete, adminUserPath(userType, id), nil, nil)
	return err
}
