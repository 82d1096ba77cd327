package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/service"
	ws "github.com/quizdesk/quizdesk-web/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Subscriber streams one user's notification events until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) <-chan model.Event
}

// NotificationHandler pushes toasts, upload progress and drawer changes to
// the browser over a WebSocket.
type NotificationHandler struct {
	subscriber     Subscriber
	uiStateService *service.UIStateService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(subscriber Subscriber, uiStateService *service.UIStateService, log zerolog.Logger, allowedOrigins []string) *NotificationHandler {
	return &NotificationHandler{
		subscriber:     subscriber,
		uiStateService: uiStateService,
		log:            log.With().Str("component", "notification_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/notifications?token=...
func (h *NotificationHandler) Stream(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", id.UserID).Logger()
	wsLog.Info().Msg("Notification stream opened")

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	events := h.subscriber.Subscribe(ctx, id.UserID)
	replies := make(chan interface{}, 4)

	// Reader: only this goroutine reads; all writes happen below.
	go func() {
		defer cancel()
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}

			reply := h.handleAction(ctx, wsLog, id.UserID, msg)
			if reply == nil {
				continue
			}
			select {
			case replies <- reply:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Notification stream closed")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.NotificationResponse{Event: ws.EventNotification, Payload: ev}); err != nil {
				return
			}
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// handleAction answers one client message. Drawer changes are not echoed
// here; they arrive back through the subscription like any other event.
func (h *NotificationHandler) handleAction(ctx context.Context, log zerolog.Logger, userID string, msg ws.RequestEnvelope) interface{} {
	switch msg.Action {
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}
	case ws.ActionDrawer:
		var err error
		if msg.Open == nil {
			_, err = h.uiStateService.ToggleDrawer(ctx, userID)
		} else {
			err = h.uiStateService.SetDrawer(ctx, userID, *msg.Open)
		}
		if err != nil {
			log.Error().Err(err).Msg("Drawer update failed")
			return ws.ErrorResponse{Event: ws.EventError, Error: "drawer update failed"}
		}
		return nil
	default:
		log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
	}
}
