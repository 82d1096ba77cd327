package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifierDeliversToSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	n := NewRedisNotifier(rdb, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := n.Subscribe(ctx, "u1")

	// Publishing before the subscription is registered would be lost.
	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, n.Publish(ctx, "u1", model.ToastEvent(model.ToastSuccess, "Saved", "notes.pdf")))

	select {
	case ev := <-events:
		require.NotNil(t, ev.Toast)
		assert.Equal(t, "Saved", ev.Toast.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	for range events {
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	_ = r.Publish(ctx, "u1", model.ToastEvent(model.ToastSuccess, "a", ""))
	_ = r.Publish(ctx, "u1", model.Event{Type: model.EventUploadProgress})
	_ = r.Publish(ctx, "u1", model.ToastEvent(model.ToastError, "b", ""))

	assert.Len(t, r.Events("u1"), 3)
	toasts := r.Toasts("u1")
	require.Len(t, toasts, 2)
	assert.Equal(t, "a", toasts[0].Title)
	assert.Equal(t, "b", toasts[1].Title)
}
