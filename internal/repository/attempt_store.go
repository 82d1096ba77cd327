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

// AttemptStore caches attempt payloads and owns their current-question
// pointers in Redis. Every key is scoped by the user the upstream served the
// attempt to, so one user's cache never answers another user's request.
type AttemptStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(rdb *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{rdb: rdb, ttl: ttl}
}

// GetAttempt returns the cached attempt or nil on a miss.
func (r *AttemptStore) GetAttempt(ctx context.Context, userID, attemptID string) (*model.Attempt, error) {
	var a model.Attempt
	ok, err := r.getJSON(ctx, config.CacheKey.AttemptPayloadKey(userID, attemptID), &a)
	if !ok || err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAttempt caches the attempt payload.
func (r *AttemptStore) SaveAttempt(ctx context.Context, userID string, a *model.Attempt) error {
	return r.setJSON(ctx, config.CacheKey.AttemptPayloadKey(userID, a.ID), a)
}

// GetState returns the attempt pointer or nil when none was initialized.
func (r *AttemptStore) GetState(ctx context.Context, userID, attemptID string) (*model.AttemptState, error) {
	var s model.AttemptState
	ok, err := r.getJSON(ctx, config.CacheKey.AttemptStateKey(userID, attemptID), &s)
	if !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveState writes the attempt pointer.
func (r *AttemptStore) SaveState(ctx context.Context, userID string, s *model.AttemptState) error {
	return r.setJSON(ctx, config.CacheKey.AttemptStateKey(userID, s.AttemptID), s)
}

func (r *AttemptStore) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *AttemptStore) setJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.rdb.Set(ctx, key, raw, r.ttl).Err()
}
