package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
)

// DocumentCache caches upstream document pages per user in Redis.
type DocumentCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDocumentCache creates a new DocumentCache.
func NewDocumentCache(rdb *redis.Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{rdb: rdb, ttl: ttl}
}

// GetPage returns a cached page; ok is false on a miss.
func (r *DocumentCache) GetPage(ctx context.Context, userID string, page int) (*model.DocumentPage, bool, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.DocumentPageKey(userID, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document page: %w", err)
	}

	var p model.DocumentPage
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("decode document page: %w", err)
	}
	return &p, true, nil
}

// SetPage stores a page with the configured TTL.
func (r *DocumentCache) SetPage(ctx context.Context, userID string, page int, p *model.DocumentPage) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode document page: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.DocumentPageKey(userID, page), raw, r.ttl).Err()
}

// Invalidate drops every cached page of the user.
func (r *DocumentCache) Invalidate(ctx context.Context, userID string) error {
	iter := r.rdb.Scan(ctx, 0, config.CacheKey.DocumentPagePattern(userID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan document pages: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
