package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the daemon configuration.
type Config struct {
	Addr         string        // HTTP listen address, e.g. ":8888"
	SongDir      string        // Directory owned by the track store; wiped at startup
	PlaylistSize int           // Maximum playlist length before history eviction kicks in
	PollInterval time.Duration // Wait between playback poll iterations

	LogLevel      string
	LogFile       string // Empty means stdout only
	LogMaxSize    int    // Megabytes before rotation
	LogMaxBackups int
	LogMaxAge     int // Days
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration or returns a
// default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		Addr:         getEnv("JUKEBOX_ADDR", ":8888"),
		SongDir:      getEnv("JUKEBOX_SONG_DIR", filepath.Join("data", "songs")),
		PlaylistSize: getEnvInt("JUKEBOX_PLAYLIST_SIZE", 10),
		PollInterval: getEnvDuration("JUKEBOX_POLL_INTERVAL", 100*time.Millisecond),

		LogLevel:      getEnv("JUKEBOX_LOG_LEVEL", "info"),
		LogFile:       getEnv("JUKEBOX_LOG_FILE", ""),
		LogMaxSize:    getEnvInt("JUKEBOX_LOG_MAX_SIZE", 50),
		LogMaxBackups: getEnvInt("JUKEBOX_LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("JUKEBOX_LOG_MAX_AGE", 14),
	}
}
