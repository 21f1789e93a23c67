// Package store implements the content-addressed track store backing the
// playlist. Blobs are written under their SHA-256 digest and reference
// counted; a blob is unlinked the moment its last playlist slot releases
// it. The store owns its directory outright and wipes it at startup, so
// nothing in it survives a restart.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jukeboxd/logger"
)

// ErrNotFound is returned when releasing a hash the store doesn't know.
// With correct callers (one Release per live playlist slot) it never fires.
var ErrNotFound = errors.New("song not found in store")

// Store is a content-addressed, reference-counted blob store. It is not
// safe for concurrent use; the jukebox serializes access to it.
type Store struct {
	dir      string
	refcount map[string]int
}

// New creates a store rooted at dir, creating the directory if needed and
// removing any files left over from a previous run.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create song directory %s: %w", dir, err)
	}
	s := &Store{
		dir:      dir,
		refcount: make(map[string]int),
	}
	if err := s.wipe(); err != nil {
		return nil, err
	}
	return s, nil
}

// Put stores data under its content digest and returns the digest. Content
// already present is not rewritten; its reference count is bumped instead.
func (s *Store) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if _, ok := s.refcount[hash]; ok {
		s.refcount[hash]++
		logger.Debug("store: duplicate content",
			logger.String("hash", hash),
			logger.Int("refcount", s.refcount[hash]),
		)
		return hash, nil
	}

	if err := os.WriteFile(s.Path(hash), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write song %s: %w", hash, err)
	}
	s.refcount[hash] = 1
	logger.Debug("store: new content",
		logger.String("hash", hash),
		logger.Int("bytes", len(data)),
	)
	return hash, nil
}

// Release drops one reference to hash. When the count reaches zero the
// blob is unlinked immediately and the entry removed.
func (s *Store) Release(hash string) error {
	count, ok := s.refcount[hash]
	if !ok {
		return ErrNotFound
	}
	if count > 1 {
		s.refcount[hash] = count - 1
		return nil
	}
	delete(s.refcount, hash)
	if err := os.Remove(s.Path(hash)); err != nil {
		return fmt.Errorf("failed to remove song %s: %w", hash, err)
	}
	logger.Debug("store: content released", logger.String("hash", hash))
	return nil
}

// Clear unlinks every blob and resets the reference counts.
func (s *Store) Clear() error {
	s.refcount = make(map[string]int)
	return s.wipe()
}

// Path returns the on-disk path for a hash.
func (s *Store) Path(hash string) string {
	return filepath.Join(s.dir, hash)
}

// Len returns the number of distinct blobs currently stored.
func (s *Store) Len() int {
	return len(s.refcount)
}

func (s *Store) wipe() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read song directory %s: %w", s.dir, err)
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
