package websocket

import (
	"encoding/json"

	"github.com/confspotter/confspotter-be/internal/models"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewNotificationMessage wraps an event for delivery to the browser.
func NewNotificationMessage(event models.Event) []byte {
	return encode(Message{Action: "notification", Payload: event})
}

// NewErrorMessage reports a problem with a client request.
func NewErrorMessage(message string) []byte {
	return encode(Message{Action: "error", Payload: map[string]string{"message": message}})
}

// NewPongMessage answers an application-level ping.
func NewPongMessage() []byte {
	return encode(Message{Action: "pong"})
}

func encode(m Message) []byte {
	b, err := json.Marshal(m)
	if err != nil {
		return []byte(`{"action":"error","payload":{"message":"encoding failure"}}`)
	}
	return b
}
