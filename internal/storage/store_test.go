package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/odg-delivery/console/internal/config"
)

func TestStores_Contract(t *testing.T) {
	keyring.MockInit()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"file": func(t *testing.T) Store {
			return NewFile(filepath.Join(t.TempDir(), "nested", "storage.json"))
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "storage.sqlite"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"keyring": func(t *testing.T) Store { return NewKeyring("odg-console-test") },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			_, ok, err := s.Get(KeyToken)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store has no token")

			require.NoError(t, s.Set(KeyToken, "abc"))
			require.NoError(t, s.Set(KeyRole, "vendor"))
			require.NoError(t, s.Set(KeyToken, "def"))

			v, ok, err := s.Get(KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "def", v, "Set overwrites")

			require.NoError(t, s.Delete(KeyToken))
			require.NoError(t, s.Delete(KeyToken), "deleting a missing key is not an error")

			_, ok, err = s.Get(KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = s.Get(KeyRole)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "vendor", v)
		})
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	require.NoError(t, NewFile(path).Set(KeyIsVerified, "true"))

	v, ok, err := NewFile(path).Get(KeyIsVerified)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := NewFile(path).Get(KeyToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse storage file")
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StorageConfig{Driver: "file", Path: filepath.Join(dir, "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(config.StorageConfig{Driver: "SQLite", Path: filepath.Join(dir, "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.(*SQLite).Close()

	_, err = Open(config.StorageConfig{Driver: "redis"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}
