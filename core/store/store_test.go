package store

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewWipesLeftovers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), []byte("old run"), 0644))

	s, err := New(dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, s.Len())
}

func TestPutAddressesByContent(t *testing.T) {
	s := newStore(t)
	data := []byte("some audio bytes")

	hash, err := s.Put(data)
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)

	stored, err := os.ReadFile(s.Path(hash))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestPutDeduplicates(t *testing.T) {
	s := newStore(t)
	data := []byte("same bytes twice")

	h1, err := s.Put(data)
	require.NoError(t, err)
	h2, err := s.Put(data)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, s.Len())

	// First release keeps the blob alive for the remaining reference.
	require.NoError(t, s.Release(h1))
	_, err = os.Stat(s.Path(h1))
	assert.NoError(t, err)

	// Second release drops the last reference and unlinks.
	require.NoError(t, s.Release(h1))
	_, err = os.Stat(s.Path(h1))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, s.Len())
}

func TestReleaseUnknownHash(t *testing.T) {
	s := newStore(t)
	err := s.Release("deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearUnlinksEverything(t *testing.T) {
	s := newStore(t)
	h1, err := s.Put([]byte("first"))
	require.NoError(t, err)
	h2, err := s.Put([]byte("second"))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	require.NoError(t, s.Clear())

	assert.Equal(t, 0, s.Len())
	for _, h := range []string{h1, h2} {
		_, err := os.Stat(s.Path(h))
		assert.True(t, os.IsNotExist(err))
	}

	// Releasing after a clear must not resurrect anything.
	assert.ErrorIs(t, s.Release(h1), ErrNotFound)
}
