package app_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/api"
	"primis/internal/app"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, app.StorageFile, cfg.Storage)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, ".primis", filepath.Base(cfg.Home))
	assert.Equal(t, "primis", cfg.Redis.Prefix)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_Env(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PRIMIS_API_URL", "https://school.example.com")
	t.Setenv("PRIMIS_HOME", home)
	t.Setenv("PRIMIS_STORAGE", "redis")
	t.Setenv("PRIMIS_REDIS_ADDR", "redis:6380")
	t.Setenv("PRIMIS_TIMEOUT", "5s")
	t.Setenv("PRIMIS_LOG_FORMAT", "JSON")

	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)
	assert.Equal(t, "https://school.example.com", cfg.APIURL)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, app.StorageRedis, cfg.Storage)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := map[string][2]string{
		"bad storage": {"PRIMIS_STORAGE", "floppy"},
		"bad url":     {"PRIMIS_API_URL", "not a url"},
		"bad format":  {"PRIMIS_LOG_FORMAT", "xml"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PRIMIS_HOME", t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := app.LoadConfig(app.NewViper())
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRIMIS_API_URL=http://dotenv.example:9000\n"), 0o600))
	t.Setenv("PRIMIS_HOME", dir)
	// godotenv never overrides, so make sure the key is unset for the test.
	t.Setenv("PRIMIS_API_URL", "")
	require.NoError(t, os.Unsetenv("PRIMIS_API_URL"))

	require.NoError(t, app.LoadDotEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, app.LoadDotEnv(path))

	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.example:9000", cfg.APIURL)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := app.NewLogger(app.LogConfig{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.WithField("component", "test").Info("hello")
	assert.Contains(t, buf.String(), `"component":"test"`)

	buf.Reset()
	log = app.NewLogger(app.LogConfig{Level: "loud"}, &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestNewWire_FileStorage(t *testing.T) {
	home := filepath.Join(t.TempDir(), "primis")
	cfg := app.Config{APIURL: "http://localhost:8000", Home: home, Storage: app.StorageFile, Timeout: time.Second}
	w, err := app.NewWire(cfg, logrus.New())
	require.NoError(t, err)
	defer w.Close()

	require.NotNil(t, w.API)
	require.NotNil(t, w.Session)
	_, err = os.Stat(home)
	assert.NoError(t, err)
}

func TestNewWire_AppliesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := app.Config{APIURL: srv.URL, Storage: app.StorageMemory, Timeout: 50 * time.Millisecond}
	w, err := app.NewWire(cfg, logrus.New())
	require.NoError(t, err)
	defer w.Close()

	start := time.Now()
	_, err = w.API.Get(context.Background(), api.Prefix+"/courses", nil)
	require.Error(t, err)
	assert.Equal(t, 0, api.StatusOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}
