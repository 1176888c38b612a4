package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// Payments lists the caller's own payments.
func (c *Client) Payments(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/payments", nil, nil)
}

func (c *Client) StudentPayments(ctx context.Context, studentID int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/payments/student/"+strconv.FormatInt(studentID, 10), nil, nil)
}

// AllPayments is admin-only.
func (c *Client) AllPayments(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/payments/all", nil, nil)
}
