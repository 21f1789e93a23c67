package model

import "sync"

// Song represents one playlist slot. Two slots enqueued from identical
// bytes share the same hash and backing file but are distinct Song values.
type Song struct {
	Title string
	Hash  string
	Path  string

	mu       sync.RWMutex
	duration float64
	measured bool
}

// NewSong creates a song with an unknown duration.
func NewSong(title, path, hash string) *Song {
	return &Song{Title: title, Path: path, Hash: hash}
}

// Duration returns the song duration in seconds. The second return value is
// false until the playback engine has measured it.
func (s *Song) Duration() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration, s.measured
}

// SetDuration records the measured duration. The duration transitions from
// unknown to known exactly once; later calls are ignored.
func (s *Song) SetDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.measured {
		return
	}
	s.duration = d
	s.measured = true
}

// Info returns the client-facing view of the song.
func (s *Song) Info() SongInfo {
	info := SongInfo{Title: s.Title}
	if d, ok := s.Duration(); ok {
		info.Duration = &d
	}
	return info
}
