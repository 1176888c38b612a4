package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/domain"
	"primis/internal/store"
)

func TestFileStorage_SaveLoadDelete(t *testing.T) {
	home := t.TempDir()
	var s domain.Storage = store.NewFileStorage(home, "")

	_, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must not be reported as present")

	require.NoError(t, s.Save(domain.TokenKey, []byte("abc")))
	require.NoError(t, s.Save(domain.SnapshotKey, []byte(`{"state":{}}`)))

	got, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	info, err := os.Stat(filepath.Join(home, domain.TokenKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Delete(domain.TokenKey, domain.SnapshotKey, "never-written"))
	for _, key := range []string{domain.TokenKey, domain.SnapshotKey} {
		_, ok, err := s.Load(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestFileStorage_CreatesDirOnSave(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", ".primis")
	s := store.NewFileStorage(home, "")

	require.NoError(t, s.Save(domain.TokenKey, []byte("t")))
	_, err := os.Stat(home)
	assert.NoError(t, err)
}

func TestFileStorage_InvalidKey(t *testing.T) {
	s := store.NewFileStorage(t.TempDir(), "")

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(key, []byte("x")), store.ErrInvalidKey)
			_, _, err := s.Load(key)
			assert.ErrorIs(t, err, store.ErrInvalidKey)
		})
	}
}

func TestFileStorage_Sealed(t *testing.T) {
	home := t.TempDir()
	s := store.NewFileStorage(home, "correct horse")

	require.NoError(t, s.Save(domain.TokenKey, []byte("secret-token")))

	raw, err := os.ReadFile(filepath.Join(home, domain.TokenKey))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	got, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret-token", string(got))

	_, _, err = store.NewFileStorage(home, "wrong").Load(domain.TokenKey)
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestFileStorage_SealedValueBoundToKey(t *testing.T) {
	home := t.TempDir()
	s := store.NewFileStorage(home, "pass")

	require.NoError(t, s.Save(domain.TokenKey, []byte("abc")))
	raw, err := os.ReadFile(filepath.Join(home, domain.TokenKey))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(home, domain.SnapshotKey), raw, 0o600))

	_, _, err = s.Load(domain.SnapshotKey)
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	s := store.NewMemoryStorage()
	v := []byte("abc")
	require.NoError(t, s.Save(domain.TokenKey, v))
	v[0] = 'x'

	got, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, s.Delete(domain.TokenKey))
	_, ok, _ = s.Load(domain.TokenKey)
	assert.False(t, ok)
}
