package repository

import (
	"context"
	"encoding/json"

	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
)

// UploadQueue pushes upload state transitions onto the ledger queue consumed
// by worker.UploadLedgerWorker.
type UploadQueue struct {
	rdb *redis.Client
}

// NewUploadQueue creates a new UploadQueue.
func NewUploadQueue(rdb *redis.Client) *UploadQueue {
	return &UploadQueue{rdb: rdb}
}

// Record enqueues one event.
func (q *UploadQueue) Record(ctx context.Context, ev model.UploadEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistUploadEventsQueue, payload).Err()
}

// Depth returns the number of events not yet persisted.
func (q *UploadQueue) Depth(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.PersistUploadEventsQueue).Result()
}
