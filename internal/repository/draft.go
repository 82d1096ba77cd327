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

// DraftStore preserves a user's quiz generation form between attempts.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftStore creates a new DraftStore.
func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{rdb: rdb, ttl: ttl}
}

// SaveDraft stores the form as submitted.
func (r *DraftStore) SaveDraft(ctx context.Context, userID string, form *model.GenerateQuizRequest) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.GenerateDraftKey(userID), raw, r.ttl).Err()
}

// LoadDraft returns the saved form or nil when there is none.
func (r *DraftStore) LoadDraft(ctx context.Context, userID string) (*model.GenerateQuizRequest, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.GenerateDraftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var form model.GenerateQuizRequest
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &form, nil
}

// DeleteDraft resets the form.
func (r *DraftStore) DeleteDraft(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, config.CacheKey.GenerateDraftKey(userID)).Err()
}
