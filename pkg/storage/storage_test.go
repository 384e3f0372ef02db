package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storager {
	t.Helper()
	dir := t.TempDir()

	fs, err := NewClient(&Config{Type: LOCAL, SavePath: filepath.Join(dir, "fs"), MaxBytes: 64})
	require.NoError(t, err)

	kv, err := NewClient(&Config{Type: SQLITE, SavePath: filepath.Join(dir, "kv", "local.sqlite3"), MaxBytes: 64})
	require.NoError(t, err)

	return map[string]Storager{
		LOCAL:  fs,
		SQLITE: kv,
		MEMORY: NewMemory(64),
	}
}

func TestStorager_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("notes-app:notes")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set("notes-app:notes", []byte(`[]`)))
			require.NoError(t, s.Set("notes-app:notes", []byte(`[{"id":"local-1"}]`)))

			v, err := s.Get("notes-app:notes")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"local-1"}]`, string(v))

			require.NoError(t, s.Remove("notes-app:notes"))
			require.NoError(t, s.Remove("notes-app:notes"))
			_, err = s.Get("notes-app:notes")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorager_Quota(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("k", []byte("small")))

			big := make([]byte, 65)
			err := s.Set("k", big)
			assert.ErrorIs(t, err, ErrQuotaExceeded)

			// The previous value survives a rejected write
			// 被拒绝的写入不影响原有值
			v, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "small", string(v))
		})
	}
}

func TestNewClient_InvalidType(t *testing.T) {
	_, err := NewClient(&Config{Type: "s3"})
	assert.ErrorIs(t, err, ErrInvalidStorageType)

	_, err = NewClient(nil)
	assert.ErrorIs(t, err, ErrInvalidStorageType)
}
