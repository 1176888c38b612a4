package api

import (
	"context"
	"encoding/json"
	"net/http"
)

func (c *Client) Get(ctx context.Context, path string, params map[string]any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil, params)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Request(ctx, http.MethodDelete, path, nil, nil)
	return err
}
