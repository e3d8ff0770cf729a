package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/auth"
	ws "github.com/avelks/todo-api-be/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections and streams the caller's
// activity events.
type WebSocketHandler struct {
	hub    *ws.Hub
	tokens *auth.TokenService
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, tokens *auth.TokenService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve authenticates the request and hands the connection to the hub.
// Browsers cannot set headers on websocket requests, so the token may also
// arrive as a query parameter.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenStr := auth.BearerToken(r)
	if tokenStr == "" {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}
	claims, err := h.tokens.Verify(tokenStr)
	if err != nil {
		writeFail(w, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.Subject)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
