package repository

import (
	"context"
	"errors"

	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/redis/go-redis/v9"
)

// UIStateStore keeps per-user UI visibility flags in Redis.
type UIStateStore struct {
	rdb *redis.Client
}

// NewUIStateStore creates a new UIStateStore.
func NewUIStateStore(rdb *redis.Client) *UIStateStore {
	return &UIStateStore{rdb: rdb}
}

// GetDrawer reports whether the upload drawer is open. Missing means closed.
func (r *UIStateStore) GetDrawer(ctx context.Context, userID string) (bool, error) {
	v, err := r.rdb.Get(ctx, config.CacheKey.DrawerKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// SetDrawer records the drawer visibility.
func (r *UIStateStore) SetDrawer(ctx context.Context, userID string, open bool) error {
	key := config.CacheKey.DrawerKey(userID)
	if !open {
		return r.rdb.Del(ctx, key).Err()
	}
	return r.rdb.Set(ctx, key, "1", 0).Err()
}
