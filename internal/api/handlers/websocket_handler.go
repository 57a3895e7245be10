package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/services"
	ws "github.com/confspotter/confspotter-be/internal/websocket"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated requests to notification streams.
type WebSocketHandler struct {
	hub      *ws.Hub
	events   services.EventServiceProvider
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Upgrades are accepted
// only from allowedOrigins; an empty list accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, events services.EventServiceProvider, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:    hub,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Unregister(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.trySend(client, ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case "ping":
		h.trySend(client, ws.NewPongMessage())

	case "recent_events":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		events, err := h.events.GetRecentEvents(ctx, &client.UserID, 20)
		if err != nil {
			log.Error().Err(err).Int64("user_id", client.UserID).Msg("Failed to load recent events")
			h.trySend(client, ws.NewErrorMessage("Failed to load recent events"))
			return
		}
		for i := len(events) - 1; i >= 0; i-- {
			h.trySend(client, ws.NewNotificationMessage(events[i]))
		}

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.trySend(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}

// trySend routes replies through the hub so that Send is only ever closed
// by the hub goroutine.
func (h *WebSocketHandler) trySend(client *ws.Client, message []byte) {
	h.hub.SendToConn(client, message)
}
