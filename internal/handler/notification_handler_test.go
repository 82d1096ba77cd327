package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quizdesk/quizdesk-web/internal/middleware"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/repository"
	"github.com/quizdesk/quizdesk-web/internal/service"
	ws "github.com/quizdesk/quizdesk-web/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanHub is an in-process Notifier and Subscriber.
type chanHub struct {
	subscribed chan struct{}
	ch         chan model.Event
}

func newChanHub() *chanHub {
	return &chanHub{subscribed: make(chan struct{}, 1), ch: make(chan model.Event, 8)}
}

func (h *chanHub) Subscribe(ctx context.Context, _ string) <-chan model.Event {
	h.subscribed <- struct{}{}
	return h.ch
}

func (h *chanHub) Publish(_ context.Context, _ string, ev model.Event) error {
	h.ch <- ev
	return nil
}

func TestNotificationStream(t *testing.T) {
	hub := newChanHub()
	store := repository.NewMemoryStore()
	ui := service.NewUIStateService(store, hub)
	auth := service.NewAuthService("test-secret")
	h := NewNotificationHandler(hub, ui, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/notifications", middleware.RequireAuth(auth), h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := auth.IssueToken(model.Identity{UserID: "u1"}, time.Minute)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-hub.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never subscribed")
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, hub.Publish(context.Background(), "u1",
		model.ToastEvent(model.ToastSuccess, "File Uploaded successfully.", "Your file a.pdf has been uploaded successfully.")))

	var got ws.NotificationResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ws.EventNotification, got.Event)
	require.NotNil(t, got.Payload.Toast)
	assert.Equal(t, "File Uploaded successfully.", got.Payload.Toast.Title)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)

	open := true
	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionDrawer, Open: &open}))
	var drawer ws.NotificationResponse
	require.NoError(t, conn.ReadJSON(&drawer))
	assert.Equal(t, model.EventDrawer, drawer.Payload.Type)
	require.NotNil(t, drawer.Payload.DrawerOpen)
	assert.True(t, *drawer.Payload.DrawerOpen)

	stored, err := store.GetDrawer(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestNotificationStreamRequiresToken(t *testing.T) {
	hub := newChanHub()
	auth := service.NewAuthService("test-secret")
	h := NewNotificationHandler(hub, service.NewUIStateService(repository.NewMemoryStore(), hub), zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/notifications", middleware.RequireAuth(auth), h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/v1/notifications", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
