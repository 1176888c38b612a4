package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/api"
	"primis/internal/domain"
	"primis/internal/mockapi"
	"primis/internal/store"
)

func newBackend(t *testing.T) (*mockapi.Server, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	mock := mockapi.New(mockapi.Config{Log: logger})
	require.NoError(t, mock.Seed())
	srv := httptest.NewServer(mock.Router())
	t.Cleanup(srv.Close)
	return mock, srv
}

func newClient(t *testing.T, baseURL string) (*api.Client, *store.MemoryStorage) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	storage := store.NewMemoryStorage()
	c, err := api.New(baseURL, storage, api.WithLogger(logger))
	require.NoError(t, err)
	return c, storage
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "localhost:8000", "ftp://example.com", "http://"} {
		_, err := api.New(raw, store.NewMemoryStorage())
		assert.Error(t, err, raw)
	}
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, storage := newClient(t, srv.URL)

	_, err := c.Get(context.Background(), api.Prefix+"/courses", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token stored, no header")

	require.NoError(t, storage.Save(domain.TokenKey, []byte("abc")))
	raw, err := c.Get(context.Background(), api.Prefix+"/courses", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestRequest_InvalidPath(t *testing.T) {
	c, _ := newClient(t, "http://127.0.0.1:1")
	_, err := c.Request(context.Background(), http.MethodGet, "/v1/courses", nil, nil)
	assert.ErrorIs(t, err, api.ErrInvalidPath)
}

func TestRequest_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	c, _ := newClient(t, srv.URL)

	raw, err := c.Request(context.Background(), http.MethodGet, api.Prefix+"/attendance/course/3", nil,
		map[string]any{"attendance_date": "2026-01-05", "limit": 5, "skip": nil})
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, "attendance_date=2026-01-05&limit=5", gotQuery)

	_, err = c.Request(context.Background(), http.MethodGet, api.Prefix+"/courses", nil,
		map[string]any{"ids": []int{1, 2}})
	assert.Error(t, err)
}

func TestRequest_UnauthorizedClearsStorageAndNotifiesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid authentication credentials"}`))
	}))
	defer srv.Close()

	c, storage := newClient(t, srv.URL)
	require.NoError(t, storage.Save(domain.TokenKey, []byte("stale")))
	require.NoError(t, storage.Save(domain.SnapshotKey, []byte(`{"state":{}}`)))

	var events []api.Invalidation
	unsubscribe := c.OnSessionInvalidated(func(ev api.Invalidation) {
		// Storage is already clear when subscribers run.
		_, ok, _ := storage.Load(domain.TokenKey)
		assert.False(t, ok)
		events = append(events, ev)
	})

	_, err := c.Get(context.Background(), api.Prefix+"/courses/my-courses", nil)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Invalid authentication credentials", api.DetailOf(err))

	require.Len(t, events, 1)
	assert.Equal(t, api.Invalidation{
		Method:     http.MethodGet,
		Path:       api.Prefix + "/courses/my-courses",
		Status:     http.StatusUnauthorized,
		RedirectTo: "/login",
	}, events[0])
	for _, key := range []string{domain.TokenKey, domain.SnapshotKey} {
		_, ok, err := storage.Load(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	unsubscribe()
	_, _ = c.Get(context.Background(), api.Prefix+"/courses/my-courses", nil)
	assert.Len(t, events, 1, "unsubscribed handler must not run")
}

func TestRequest_ErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Email already registered"}`, "Email already registered"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{"message field", http.StatusConflict, `{"message":"conflict"}`, "conflict"},
		{"structured detail", http.StatusBadRequest, `{"detail":{"code":7}}`, `{"code":7}`},
		{"plain text", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"html page", http.StatusServiceUnavailable, `<html>busy</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			c, _ := newClient(t, srv.URL)

			_, err := c.Post(context.Background(), api.Prefix+"/auth/register/student", map[string]string{})
			var apiErr *api.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.detail, apiErr.Detail)
			assert.Equal(t, http.MethodPost, apiErr.Method)
		})
	}
}

func TestRequest_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, storage := newClient(t, base)
	require.NoError(t, storage.Save(domain.TokenKey, []byte("abc")))
	fired := false
	c.OnSessionInvalidated(func(api.Invalidation) { fired = true })

	_, err := c.Get(context.Background(), api.Prefix+"/courses", nil)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.NotNil(t, errors.Unwrap(apiErr))
	assert.False(t, fired)

	_, ok, _ := storage.Load(domain.TokenKey)
	assert.True(t, ok, "transport failures leave the session alone")
}

func TestRequest_LogsWithoutToken(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	_, srv := newBackend(t)

	storage := store.NewMemoryStorage()
	c, err := api.New(srv.URL, storage, api.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, storage.Save(domain.TokenKey, []byte("super-secret")))

	_, _ = c.Get(context.Background(), api.Prefix+"/courses", nil)
	require.NotEmpty(t, hook.AllEntries())
	for _, e := range hook.AllEntries() {
		b, _ := json.Marshal(e.Data)
		assert.NotContains(t, string(b), "super-secret")
		assert.Equal(t, "api", e.Data["component"])
	}
}

func TestClient_AgainstBackend(t *testing.T) {
	mock, srv := newBackend(t)
	c, storage := newClient(t, srv.URL)
	ctx := context.Background()

	tok, err := c.Login(ctx, domain.Credentials{Email: "student@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeStudent, tok.UserType)
	assert.Equal(t, "bearer", tok.TokenType)
	require.NoError(t, storage.Save(domain.TokenKey, []byte(tok.AccessToken)))

	me, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, me.User)
	assert.Equal(t, tok.UserID, me.User.ID)
	assert.Equal(t, tok.UserID, me.User.RoleID(domain.UserTypeStudent))

	var courses []struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
	}
	require.NoError(t, c.Do(ctx, http.MethodGet, api.Prefix+"/courses", nil, nil, &courses))
	require.Len(t, courses, 1)
	_, err = c.EnrollInCourse(ctx, courses[0].ID)
	require.NoError(t, err)

	var mine []json.RawMessage
	raw, err := c.MyCourses(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &mine))
	assert.Len(t, mine, 1)

	count, err := c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count.UnreadCount)
	require.NoError(t, c.MarkAllNotificationsRead(ctx))
	count, err = c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count.UnreadCount)

	_, err = c.AdminStats(ctx)
	assert.Equal(t, http.StatusForbidden, api.StatusOf(err))
	_, ok, _ := storage.Load(domain.TokenKey)
	assert.True(t, ok, "403 keeps the session")

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, 1, mock.LogoutCalls())

	_, err = c.MyCourses(ctx)
	assert.True(t, api.IsUnauthorized(err), "revoked token is rejected")
	_, ok, _ = storage.Load(domain.TokenKey)
	assert.False(t, ok)
}

func TestClient_LoginRejected(t *testing.T) {
	_, srv := newBackend(t)
	c, _ := newClient(t, srv.URL)

	_, err := c.Login(context.Background(), domain.Credentials{Email: "student@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
	assert.Equal(t, "Incorrect email or password", api.DetailOf(err))
}

func TestClient_AdminEndpoints(t *testing.T) {
	_, srv := newBackend(t)
	c, storage := newClient(t, srv.URL)
	ctx := context.Background()

	tok, err := c.Login(ctx, domain.Credentials{Email: "admin@example.com", Password: "pw123456"})
	require.NoError(t, err)
	require.NoError(t, storage.Save(domain.TokenKey, []byte(tok.AccessToken)))

	var stats map[string]int
	raw, err := c.AdminStats(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats["total_students"])

	var users []struct {
		ID       int64           `json:"id"`
		UserType domain.UserType `json:"user_type"`
	}
	raw, err = c.RecentUsers(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 2)

	for _, kind := range api.AnalyticsKinds {
		_, err := c.Analytics(ctx, kind)
		assert.NoError(t, err, kind)
	}
	_, err = c.Analytics(ctx, "weather")
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err), "unknown kinds are judged by the backend")

	_, err = c.RegisterRole(ctx, domain.UserType("wizard"), domain.RegisterData{Name: "Merlin", Email: "m@example.com", Password: "pw123456"})
	assert.Equal(t, http.StatusNotFound, api.StatusOf(err), "unknown roles are judged by the backend")

	student, err := c.RegisterRole(ctx, domain.UserTypeTeacher, domain.RegisterData{Name: "New Teacher", Email: "nt@example.com", Password: "pw123456"})
	require.NoError(t, err)
	var created map[string]any
	require.NoError(t, json.Unmarshal(student, &created))
	teacherID := int64(created["teacher_id"].(float64))

	_, err = c.SetUserStatus(ctx, domain.UserTypeTeacher, teacherID, false)
	require.NoError(t, err)
	_, err = c.Login(ctx, domain.Credentials{Email: "nt@example.com", Password: "pw123456"})
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
}

func TestClient_PasswordFlows(t *testing.T) {
	mock, srv := newBackend(t)
	c, storage := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.ForgotPassword(ctx, "teacher@example.com")
	require.NoError(t, err)
	resetToken, ok := mock.ResetToken("teacher@example.com")
	require.True(t, ok)

	_, err = c.ResetPassword(ctx, domain.ResetPassword{Token: "bogus", NewPassword: "fresh123", ConfirmPassword: "fresh123"})
	assert.Equal(t, "Invalid or expired reset token", api.DetailOf(err))

	_, err = c.ResetPassword(ctx, domain.ResetPassword{Token: resetToken, NewPassword: "fresh123", ConfirmPassword: "fresh123"})
	require.NoError(t, err)

	tok, err := c.Login(ctx, domain.Credentials{Email: "teacher@example.com", Password: "fresh123"})
	require.NoError(t, err)
	require.NoError(t, storage.Save(domain.TokenKey, []byte(tok.AccessToken)))

	_, err = c.ChangePassword(ctx, domain.ChangePassword{CurrentPassword: "wrong", NewPassword: "newer123", ConfirmPassword: "newer123"})
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	assert.Equal(t, "Current password is incorrect", api.DetailOf(err))

	_, err = c.ChangePassword(ctx, domain.ChangePassword{CurrentPassword: "fresh123", NewPassword: "newer123", ConfirmPassword: "newer123"})
	require.NoError(t, err)
	_, err = c.Login(ctx, domain.Credentials{Email: "teacher@example.com", Password: "newer123"})
	assert.NoError(t, err)
}

func TestRequest_RejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), 9<<20))
		_, _ = w.Write([]byte(`"`))
	}))
	defer srv.Close()
	c, _ := newClient(t, srv.URL)

	raw, err := c.Get(context.Background(), api.Prefix+"/reports/export", nil)
	assert.Nil(t, raw)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.ErrorIs(t, err, api.ErrResponseTooLarge)
}

func TestRequest_AcceptsBodyAtLimit(t *testing.T) {
	body := append(append([]byte(`"`), bytes.Repeat([]byte("a"), 8<<20-2)...), '"')
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()
	c, _ := newClient(t, srv.URL)

	raw, err := c.Get(context.Background(), api.Prefix+"/reports/export", nil)
	require.NoError(t, err)
	assert.Len(t, raw, 8<<20)
	assert.True(t, json.Valid(raw))
}

func TestRequest_PlainTextDetailKeepsRunesWhole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		// 199 ASCII bytes then a two-byte rune straddling the 200-byte cut.
		_, _ = w.Write([]byte(strings.Repeat("x", 199) + "é and more"))
	}))
	defer srv.Close()
	c, _ := newClient(t, srv.URL)

	_, err := c.Get(context.Background(), api.Prefix+"/courses", nil)
	detail := api.DetailOf(err)
	assert.True(t, utf8.ValidString(detail))
	assert.Equal(t, strings.Repeat("x", 199), detail)
}
