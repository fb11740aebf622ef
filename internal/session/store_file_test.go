package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	newStore := func(t *testing.T) (*FileStore, string) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "session.json")
		return NewFileStore(path), path
	}

	t.Run("read on a fresh slot returns empty", func(t *testing.T) {
		store, _ := newStore(t)
		token, err := store.Read()
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("write then read returns the token", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Write("tok-123"))

		token, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("token survives a simulated reload", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Write("tok-reload"))

		// A new store over the same path stands in for a process restart.
		reloaded := NewFileStore(path)
		token, err := reloaded.Read()
		require.NoError(t, err)
		assert.Equal(t, "tok-reload", token)
	})

	t.Run("a new write supersedes the old token", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Write("old"))
		require.NoError(t, store.Write("new"))

		token, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, "new", token)
	})

	t.Run("clear removes the slot", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Write("tok"))
		require.NoError(t, store.Clear())

		token, err := store.Read()
		require.NoError(t, err)
		assert.Empty(t, token)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("clear on an empty slot is a no-op", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Clear())
	})

	t.Run("corrupt slot reads as logged out", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		token, err := store.Read()
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("session file is owner-only", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Write("tok"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	token, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Write("tok"))
	token, err = store.Read()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear())
	token, err = store.Read()
	require.NoError(t, err)
	assert.Empty(t, token)
}
