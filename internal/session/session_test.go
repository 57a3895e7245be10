package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	want := Session{Token: "tok", User: models.User{ID: 3, Username: "alice", Email: "alice@example.com"}}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.User.ID, got.User.ID)
	assert.Equal(t, want.User.Username, got.User.Username)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}
