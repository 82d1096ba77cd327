// Package notify delivers toasts and upload progress to a user's open
// sessions.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier publishes events to one user.
type Notifier interface {
	Publish(ctx context.Context, userID string, ev model.Event) error
}

// RedisNotifier fans events out over Redis Pub/Sub so any server instance
// holding the user's WebSocket can forward them.
type RedisNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(rdb *redis.Client, log zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{
		rdb: rdb,
		log: log.With().Str("component", "notifier").Logger(),
	}
}

// Publish sends ev on the user's channel.
func (n *RedisNotifier) Publish(ctx context.Context, userID string, ev model.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.rdb.Publish(ctx, config.CacheKey.NotificationChannel(userID), payload).Err(); err != nil {
		n.log.Error().Err(err).Str("user_id", userID).Str("type", string(ev.Type)).Msg("Publish failed")
		return err
	}
	return nil
}

// Subscribe streams the user's events until ctx is done. The returned channel
// is closed when the subscription ends.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) <-chan model.Event {
	sub := n.rdb.Subscribe(ctx, config.CacheKey.NotificationChannel(userID))
	out := make(chan model.Event, 16)

	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev model.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					n.log.Warn().Err(err).Msg("Dropping malformed event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events map[string][]model.Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: make(map[string][]model.Event)}
}

// Publish records ev.
func (r *Recorder) Publish(_ context.Context, userID string, ev model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[userID] = append(r.events[userID], ev)
	return nil
}

// Events returns a copy of the user's events in publish order.
func (r *Recorder) Events(userID string) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events[userID]...)
}

// Toasts returns only the toast events of the user.
func (r *Recorder) Toasts(userID string) []model.Toast {
	var toasts []model.Toast
	for _, ev := range r.Events(userID) {
		if ev.Type == model.EventToast && ev.Toast != nil {
			toasts = append(toasts, *ev.Toast)
		}
	}
	return toasts
}
