package server

import (
	"net/http"
	"time"

	"jukeboxd/logger"

	"github.com/gorilla/websocket"
)

const (
	statusPushInterval = time.Second
	writeWait          = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same trust model as the rest of the API: LAN appliance, no
		// origin restrictions.
		return true
	},
}

// Events upgrades the connection to a websocket and streams status
// snapshots to the client until it disconnects. UIs use this instead of
// polling /musicserver/status.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("events: upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	// Drain client frames so close messages and pongs are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(h.jukebox.Status()); err != nil {
			return
		}
		select {
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}
