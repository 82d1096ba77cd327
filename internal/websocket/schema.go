package websocket

import "github.com/quizdesk/quizdesk-web/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionDrawer Action = "drawer"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
	// Open is only read for ActionDrawer; nil toggles.
	Open *bool `json:"open,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventPong         Event = "pong"
	EventNotification Event = "notification"
)

// NotificationResponse forwards one toast, progress or drawer event.
type NotificationResponse struct {
	Event   Event       `json:"event"`
	Payload model.Event `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
