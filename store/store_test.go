package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// stores returns one instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir, err := OpenDir(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"dir":    dir,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var got []doc
			found, err := s.Get("lpg_sales", &got)
			require.NoError(t, err)
			assert.False(t, found, "empty store should not find a key")

			want := []doc{{Name: "BN", Count: 3}, {Name: "C", Count: 1}}
			require.NoError(t, s.Set("lpg_sales", want))
			require.NoError(t, s.Set("lpg_credits", []doc{}))

			found, err = s.Get("lpg_sales", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, want, got)

			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"lpg_credits", "lpg_sales"}, keys)

			require.NoError(t, s.Remove("lpg_sales"))
			require.NoError(t, s.Remove("lpg_sales"), "removing twice is not an error")
			found, err = s.Get("lpg_sales", &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "..", "../escape", "a/b", "with space"} {
				assert.ErrorIs(t, s.Set(key, 1), ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestDir_CorruptDocument(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(d.Path(), "lpg_accounts.json"), []byte("{not json"), 0644))

	var v []doc
	found, err := d.Get("lpg_accounts", &v)
	assert.True(t, found)
	assert.ErrorContains(t, err, "lpg_accounts")
}

func TestDir_IgnoresTemporaryFiles(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, d.Set("lpg_customers", []doc{{Name: "Ali"}}))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path(), ".lpg_customers-123"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path(), "notes.txt"), []byte("hello"), 0644))

	keys, err := d.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"lpg_customers"}, keys)
}

func TestMemory_CorruptDocument(t *testing.T) {
	m := NewMemory()
	m.SetRaw("lpg_sales", []byte("[{"))
	var v []doc
	_, err := m.Get("lpg_sales", &v)
	assert.ErrorContains(t, err, "lpg_sales")
}
