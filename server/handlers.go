package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jukeboxd/core/jukebox"
	"jukeboxd/logger"

	"github.com/gorilla/mux"
)

// maxSongBytes bounds a single enqueue upload.
const maxSongBytes = 64 << 20

// Handler serves the jukebox control API. Every operation answers with
// the envelope {"error": false, "data": ...} on success and
// {"error": true, "errmsg": "..."} on failure, always with HTTP 200.
type Handler struct {
	jukebox *jukebox.Jukebox
}

// NewHandler creates the API handler over jb.
func NewHandler(jb *jukebox.Jukebox) *Handler {
	return &Handler{jukebox: jb}
}

// Register attaches every operation under /musicserver/ on router.
func (h *Handler) Register(router *mux.Router) {
	sub := router.PathPrefix("/musicserver").Subrouter()
	sub.HandleFunc("/clear", h.Clear).Methods(http.MethodGet)
	sub.HandleFunc("/enqueue", h.Enqueue).Methods(http.MethodPost)
	sub.HandleFunc("/next", h.Next).Methods(http.MethodGet)
	sub.HandleFunc("/pause", h.Pause).Methods(http.MethodGet)
	sub.HandleFunc("/play", h.Play).Methods(http.MethodGet)
	sub.HandleFunc("/prev", h.Prev).Methods(http.MethodGet)
	sub.HandleFunc("/remove", h.Remove).Methods(http.MethodGet)
	sub.HandleFunc("/seek", h.Seek).Methods(http.MethodGet)
	sub.HandleFunc("/setvolume", h.SetVolume).Methods(http.MethodGet)
	sub.HandleFunc("/skipbackwards", h.SkipBackwards).Methods(http.MethodGet)
	sub.HandleFunc("/skipforwards", h.SkipForwards).Methods(http.MethodGet)
	sub.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	sub.HandleFunc("/stop", h.Stop).Methods(http.MethodGet)
	sub.HandleFunc("/events", h.Events).Methods(http.MethodGet)
	sub.PathPrefix("/").HandlerFunc(h.Unknown)
}

type successResult struct {
	Error bool        `json:"error"`
	Data  interface{} `json:"data"`
}

type errorResult struct {
	Error  bool   `json:"error"`
	Errmsg string `json:"errmsg"`
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(successResult{Error: false, Data: data}); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, errmsg string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(errorResult{Error: true, Errmsg: errmsg}); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respond serializes a command result with a null data payload.
func respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err.Error())
		return
	}
	writeData(w, nil)
}

// Clear removes all songs from the playlist.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Clear())
}

// Enqueue adds a song to the playlist. The title comes from the query
// string and the audio bytes from the raw request body.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, "missing title")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSongBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "song too large")
			return
		}
		writeError(w, "failed to read song data")
		return
	}
	respond(w, h.jukebox.Enqueue(title, data))
}

// Next goes to the next song in the playlist.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Next())
}

// Pause sets the player to pause.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Pause())
}

// Play sets the player to play.
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Play())
}

// Prev goes to the previous song in the playlist.
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Prev())
}

// Remove deletes a song from the playlist by index.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, "invalid index")
		return
	}
	respond(w, h.jukebox.Remove(index))
}

// Seek jumps to a position in the current song, given as a fraction of
// its duration.
func (h *Handler) Seek(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.ParseFloat(r.URL.Query().Get("position"), 64)
	if err != nil {
		writeError(w, "invalid position")
		return
	}
	respond(w, h.jukebox.Seek(position))
}

// SetVolume sets the player volume.
func (h *Handler) SetVolume(w http.ResponseWriter, r *http.Request) {
	volume, err := strconv.ParseFloat(r.URL.Query().Get("volume"), 64)
	if err != nil {
		writeError(w, "invalid volume")
		return
	}
	respond(w, h.jukebox.SetVolume(volume))
}

// SkipBackwards moves the stream position a fixed amount backwards.
func (h *Handler) SkipBackwards(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.SkipBackwards())
}

// SkipForwards moves the stream position a fixed amount forwards.
func (h *Handler) SkipForwards(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.SkipForwards())
}

// Status returns the aggregate playlist and player snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.jukebox.Status())
}

// Stop sets the player to stop.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	respond(w, h.jukebox.Stop())
}

// Unknown answers any unregistered operation name with an envelope error.
func (h *Handler) Unknown(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/musicserver/")
	writeError(w, "unknown method "+method)
}
