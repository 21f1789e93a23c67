package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8888", cfg.Addr)
	assert.Equal(t, 10, cfg.PlaylistSize)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JUKEBOX_ADDR", ":9000")
	t.Setenv("JUKEBOX_SONG_DIR", "/var/lib/jukeboxd/songs")
	t.Setenv("JUKEBOX_PLAYLIST_SIZE", "25")
	t.Setenv("JUKEBOX_POLL_INTERVAL", "250ms")
	t.Setenv("JUKEBOX_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/var/lib/jukeboxd/songs", cfg.SongDir)
	assert.Equal(t, 25, cfg.PlaylistSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JUKEBOX_PLAYLIST_SIZE", "lots")
	t.Setenv("JUKEBOX_POLL_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.PlaylistSize)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
}
