package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"primis/internal/domain"
)

// Prefix is the versioned path every wrapper builds on.
const Prefix = "/api/v1"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

var (
	// ErrInvalidPath is returned when a request path does not start with /api/.
	ErrInvalidPath = errors.New("api: path must start with /api/")
	// ErrResponseTooLarge is wrapped by the *APIError of a body over 8 MiB.
	ErrResponseTooLarge = errors.New("api: response exceeds 8 MiB")
)

// Invalidation describes a request the backend rejected with 401. By the time
// subscribers see it the stored token and session snapshot are already gone.
type Invalidation = domain.Invalidation

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left alone.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client talks JSON to the Primis backend on behalf of the signed-in user.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	storage domain.Storage
	log     logrus.FieldLogger

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(Invalidation)
}

// New returns a client bound to baseURL. The origin cannot be changed later.
func New(baseURL string, storage domain.Storage, opts ...Option) (*Client, error) {
	if storage == nil {
		return nil, errors.New("api: storage is required")
	}
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:    base,
		timeout: defaultTimeout,
		storage: storage,
		log:     logrus.StandardLogger(),
		subs:    make(map[int]func(Invalidation)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	c.log = c.log.WithField("component", "api")
	return c, nil
}

func parseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("api: base URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL %q must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api: base URL %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery, u.Fragment = "", ""
	return u, nil
}

// BaseURL reports the origin requests are sent to.
func (c *Client) BaseURL() string { return c.base.String() }

// OnSessionInvalidated registers fn to run after every 401. The returned
// func removes the subscription.
func (c *Client) OnSessionInvalidated(fn func(Invalidation)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) subscribers() []func(Invalidation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Invalidation), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.subs[id])
	}
	return out
}

// Request sends one call and returns the raw JSON payload of a 2xx answer.
// An empty body yields nil. Every other outcome is an *APIError, except a
// bad path or an unencodable body.
func (c *Client) Request(ctx context.Context, method, path string, body any, params map[string]any) (json.RawMessage, error) {
	if !strings.HasPrefix(path, "/api/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	req, err := c.newRequest(ctx, method, path, body, params)
	if err != nil {
		return nil, err
	}

	reqID := req.Header.Get("X-Request-ID")
	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithField("latency_ms", time.Since(start).Milliseconds()).WithError(err).Error("request failed")
		return nil, &APIError{Method: method, Path: path, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	log = log.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	if err == nil && len(payload) > maxBodyBytes {
		err = ErrResponseTooLarge
	}
	if err != nil {
		log.WithError(err).Error("read response")
		return nil, &APIError{Status: resp.StatusCode, Method: method, Path: path, Message: err.Error(), Err: err}
	}

	if resp.StatusCode/100 == 2 {
		log.Debug("request ok")
		if len(bytes.TrimSpace(payload)) == 0 {
			return nil, nil
		}
		return json.RawMessage(payload), nil
	}

	apiErr := newStatusError(method, path, resp, payload)
	if resp.StatusCode >= 500 {
		log.WithField("detail", apiErr.Detail).Error("server error")
	} else {
		log.WithField("detail", apiErr.Detail).Warn("request rejected")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate(Invalidation{
			Method:     method,
			Path:       path,
			Status:     resp.StatusCode,
			RedirectTo: domain.LoginRoute,
		})
	}
	return nil, apiErr
}

// Do is Request followed by decoding the payload into out. A nil out or an
// empty payload skips decoding.
func (c *Client) Do(ctx context.Context, method, path string, body any, params map[string]any, out any) error {
	raw, err := c.Request(ctx, method, path, body, params)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, params map[string]any) (*http.Request, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		q, err := encodeParams(params)
		if err != nil {
			return nil, err
		}
		u.RawQuery = q
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token, ok, err := c.storage.Load(domain.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if ok && len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}
	return req, nil
}

func encodeParams(params map[string]any) (string, error) {
	q := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case bool:
			s = strconv.FormatBool(x)
		case int:
			s = strconv.Itoa(x)
		case int64:
			s = strconv.FormatInt(x, 10)
		case int32:
			s = strconv.FormatInt(int64(x), 10)
		case uint:
			s = strconv.FormatUint(uint64(x), 10)
		case uint64:
			s = strconv.FormatUint(x, 10)
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case float32:
			s = strconv.FormatFloat(float64(x), 'f', -1, 32)
		case time.Time:
			s = x.Format(time.RFC3339)
		case fmt.Stringer:
			s = x.String()
		default:
			return "", fmt.Errorf("api: query param %q: unsupported type %T", k, v)
		}
		q.Set(k, s)
	}
	return q.Encode(), nil
}

// invalidate drops the stored credentials and notifies subscribers once.
func (c *Client) invalidate(ev Invalidation) {
	if err := c.storage.Delete(domain.TokenKey, domain.SnapshotKey); err != nil {
		c.log.WithError(err).Error("clear stored session after 401")
	}
	for _, fn := range c.subscribers() {
		fn(ev)
	}
}
