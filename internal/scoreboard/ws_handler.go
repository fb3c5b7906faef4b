package scoreboard

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/quizdash/server/pkg/http/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The feed is read-only public data, same as the REST scoreboard.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades clients onto the live scoreboard feed.
type WSHandler struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewWSHandler creates the feed upgrade handler.
func NewWSHandler(hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger.With().Str("component", "scoreboard_ws").Logger(),
	}
}

// HandleFeed handles GET /ws/scoreboard.
func (h *WSHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConnection(raw, h.logger)
	id := h.hub.Register(conn)
	defer h.hub.Unregister(id)

	go conn.WritePump()
	conn.ReadPump()
}
