package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// APIError is a failed call. Status is 0 when no response arrived.
type APIError struct {
	Status  int
	Message string
	// Detail is the backend's explanation, taken from "detail" or "message".
	Detail string
	Method string
	Path   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend answered 401.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// DetailOf returns the backend's detail message carried by err, or "".
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

func newStatusError(method, path string, resp *http.Response, payload []byte) *APIError {
	msg := http.StatusText(resp.StatusCode)
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{
		Status:  resp.StatusCode,
		Message: msg,
		Detail:  parseDetail(payload),
		Method:  method,
		Path:    path,
	}
}

// parseDetail understands {"detail": "..."}, FastAPI-style validation lists
// {"detail": [{"msg": "..."}]} and {"message": "..."}.
func parseDetail(payload []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		s := strings.TrimSpace(string(payload))
		s = truncate(s, 200)
		if strings.HasPrefix(s, "<") {
			return ""
		}
		return s
	}
	if len(body.Detail) > 0 && string(body.Detail) != "null" {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return string(body.Detail)
	}
	return body.Message
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
