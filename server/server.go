package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jukeboxd/config"
	"jukeboxd/core/jukebox"
	"jukeboxd/core/player"
	"jukeboxd/core/playlist"
	"jukeboxd/core/store"
	"jukeboxd/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Start builds the jukebox, wires the HTTP API and runs until SIGINT or
// SIGTERM.
func Start() error {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
	})

	st, err := store.New(cfg.SongDir)
	if err != nil {
		return fmt.Errorf("failed to initialize track store: %w", err)
	}

	jb := jukebox.New(
		playlist.New(st, cfg.PlaylistSize),
		player.NewBeepEngine(),
		cfg.PollInterval,
	)
	go jb.Run()

	router := mux.NewRouter()
	router.Use(corsMiddleware, loggingMiddleware)
	NewHandler(jb).Register(router)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", cfg.Addr),
			logger.String("songDir", cfg.SongDir),
			logger.Int("playlistSize", cfg.PlaylistSize),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", logger.ErrorField(err))
	}

	jb.Close()
	logger.Info("server stopped")
	return nil
}

// corsMiddleware allows the web UI to call the API from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags every request with an id and logs its duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Debug("request handled",
			logger.String("requestId", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)),
		)
	})
}
