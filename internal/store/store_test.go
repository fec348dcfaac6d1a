package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "state.yaml"))
	require.NoError(t, err)
	_, ok := s.Get(KeyURL)
	assert.False(t, ok)
}

func TestSetPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyURL, "https://awx.example.com"))
	require.NoError(t, s.Set(KeyUsername, "ops"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	url, _ := reopened.Get(KeyURL)
	user, _ := reopened.Get(KeyUsername)
	assert.Equal(t, "https://awx.example.com", url)
	assert.Equal(t, "ops", user)
}

func TestSetRejectsUnknownKeys(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	assert.Error(t, s.Set("awx_password", "hunter2"))

	m := NewMemory()
	assert.Error(t, m.Set("awx_password", "hunter2"))
	assert.Empty(t, m.Snapshot())
}

func TestOpenDropsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("awx_url: http://x\nawx_password: leaked\n"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	_, ok := s.Get("awx_password")
	assert.False(t, ok)
	url, _ := s.Get(KeyURL)
	assert.Equal(t, "http://x", url)
}

func TestOpenInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::not valid yaml"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
