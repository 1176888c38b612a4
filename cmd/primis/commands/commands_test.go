package commands

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/api"
	"primis/internal/forms"
	"primis/internal/mockapi"
	"primis/internal/services/session"
)

type harness struct {
	t    *testing.T
	home string
	url  string
	mock *mockapi.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	mock := mockapi.New(mockapi.Config{Log: logger})
	require.NoError(t, mock.Seed())
	srv := httptest.NewServer(mock.Router())
	t.Cleanup(srv.Close)

	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	return &harness{t: t, home: t.TempDir(), url: srv.URL, mock: mock}
}

func (h *harness) password(pw string) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pw), nil }
}

// run executes one CLI invocation; each gets a fresh process-like root.
func (h *harness) run(args ...string) (string, string, error) {
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{
		"--home", h.home,
		"--api-url", h.url,
		"--storage", "file",
		"--env-file", "",
		"--log-level", "error",
	}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")

	out, _, err := h.run("login", "--email", "student@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Sam Student (Student)")
	assert.Contains(t, out, "Dashboard: /dashboard/student")

	out, _, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: student@example.com")
	assert.Contains(t, out, "Token expires:")

	out, _, err = h.run("whoami", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"isAuthenticated": true`)
	assert.NotContains(t, out, `"token"`)

	out, _, err = h.run("courses", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MATH101")

	out, _, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Equal(t, 1, h.mock.LogoutCalls())

	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogin_PromptsForEmail(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader("teacher@example.com\n"))
	root.SetArgs([]string{"--home", h.home, "--api-url", h.url, "--env-file", "", "login"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "(Teacher)")
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.password("nope-nope")

	_, errOut, err := h.run("login", "--email", "student@example.com")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.NotContains(t, errOut, "Session expired")
}

func TestLogin_InvalidForm(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")

	_, _, err := h.run("login", "--email", "not-an-email")
	var ve forms.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "email")
}

func TestSessionExpiredByBackend(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")
	_, _, err := h.run("login", "--email", "student@example.com")
	require.NoError(t, err)

	h.mock.RevokeAll()
	_, errOut, err := h.run("courses", "mine")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Contains(t, errOut, "Session expired")

	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestDegradedLoginWarns(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")
	h.mock.SetFailProfile(true)

	out, errOut, err := h.run("login", "--email", "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "(Administrator)")
	assert.Contains(t, errOut, "full profile unavailable")
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	h.password("secret99")

	out, _, err := h.run("register", "--name", "Nia New", "--email", "nia@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered nia@example.com")

	out, _, err = h.run("login", "--email", "nia@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Nia New")
}

func TestRequestCommand(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("request", "GET", "/health")
	assert.ErrorIs(t, err, api.ErrInvalidPath)

	_, _, err = h.run("request", "GET", "/api/v1/courses")
	assert.Equal(t, 401, api.StatusOf(err))

	h.password("pw123456")
	_, _, err = h.run("login", "--email", "admin@example.com")
	require.NoError(t, err)
	out, _, err := h.run("request", "get", "/api/v1/admin/users/recent", "--param", "limit=1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, `"email"`))
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")
	_, _, err := h.run("login", "--email", "admin@example.com")
	require.NoError(t, err)

	out, _, err := h.run("admin", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_courses": 1`)

	out, _, err = h.run("admin", "create-user", "parent", "--name", "Pam Parent", "--email", "pam@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, `"parent_id"`)

	_, _, err = h.run("admin", "set-status", "wizard", "1")
	assert.Error(t, err)

	out, _, err = h.run("notifications", "count")
	require.NoError(t, err)
	assert.Contains(t, out, "1 unread of 1")
}

func TestNotLoggedInGuards(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"courses", "list"},
		{"payments", "list"},
		{"notifications", "count"},
		{"admin", "stats"},
		{"attendance", "stats", "1"},
	} {
		_, _, err := h.run(args...)
		assert.ErrorIs(t, err, errNotLoggedIn, strings.Join(args, " "))
		assert.ErrorIs(t, err, session.ErrNotAuthenticated, strings.Join(args, " "))
	}
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")
	_, _, err := h.run("login", "--email", "student@example.com")
	require.NoError(t, err)

	for _, args := range [][]string{
		{"admin", "stats"},
		{"admin", "users"},
		{"courses", "create", "--title", "Physics", "--code", "PHY101"},
		{"courses", "delete", "1"},
		{"courses", "students", "1"},
		{"attendance", "mark", "--student", "1", "--course", "1"},
		{"attendance", "course", "1"},
	} {
		_, _, err := h.run(args...)
		assert.ErrorIs(t, err, errForbidden, strings.Join(args, " "))
	}
	_, _, err = h.run("admin", "stats")
	assert.EqualError(t, err, "not allowed for your role: a Student cannot use admin commands")

	_, _, err = h.run("courses", "list")
	assert.NoError(t, err, "ungated commands still work")

	_, _, err = h.run("login", "--email", "teacher@example.com")
	require.NoError(t, err)
	out, _, err := h.run("courses", "create", "--title", "Physics", "--code", "PHY101")
	require.NoError(t, err)
	var created struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "PHY101", created.Code)
	_, _, err = h.run("courses", "students", strconv.FormatInt(created.ID, 10))
	assert.NoError(t, err)
	_, _, err = h.run("admin", "stats")
	assert.ErrorIs(t, err, errForbidden)
}

func TestLogoutWithRevokedToken(t *testing.T) {
	h := newHarness(t)
	h.password("pw123456")
	_, _, err := h.run("login", "--email", "parent@example.com")
	require.NoError(t, err)

	h.mock.RevokeAll()
	out, errOut, err := h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.NotContains(t, errOut, "Session expired")

	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}
