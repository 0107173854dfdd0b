package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/courtside/league-system/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *events.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *events.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs subscribes the connection to a tier's event room. Clients
// connect to /ws/tiers/{tierID} and receive every event published for
// that tier until they disconnect.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tierID, err := strconv.Atoi(chi.URLParam(r, "tierID"))
	if err != nil || tierID <= 0 {
		http.Error(w, "invalid tier ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		h.logger.Error("websocket upgrade failed", slog.Int("tier_id", tierID), slog.Any("error", err))
		return
	}

	client := &events.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: events.TierRoom(tierID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
