package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LedgerStore persists one upload event.
type LedgerStore interface {
	ApplyEvent(ctx context.Context, ev *model.UploadEvent) error
}

// UploadLedgerWorker consumes persist_upload_events_queue and upserts each
// file's state into PostgreSQL.
type UploadLedgerWorker struct {
	store      LedgerStore
	rdb        *redis.Client
	log        zerolog.Logger
	retryDelay time.Duration
	done       chan struct{}
}

// NewUploadLedgerWorker creates a new UploadLedgerWorker.
func NewUploadLedgerWorker(store LedgerStore, rdb *redis.Client, log zerolog.Logger) *UploadLedgerWorker {
	return &UploadLedgerWorker{
		store:      store,
		rdb:        rdb,
		log:        log.With().Str("component", "upload_ledger_worker").Logger(),
		retryDelay: 5 * time.Second,
		done:       make(chan struct{}),
	}
}

// Start begins the worker loop and blocks until ctx is cancelled and the
// queue has been drained. Call in a goroutine.
func (w *UploadLedgerWorker) Start(ctx context.Context) {
	defer close(w.done)
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

// Done is closed once Start has returned.
func (w *UploadLedgerWorker) Done() <-chan struct{} {
	return w.done
}

func (w *UploadLedgerWorker) processNext(ctx context.Context) {
	queue := config.WorkerKey.PersistUploadEventsQueue

	// BLPop blocks until an item is available or the 1s timeout.
	result, err := w.rdb.BLPop(ctx, time.Second, queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			w.sleep(ctx)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	ev, ok := w.decode(result[1])
	if !ok {
		return
	}

	if err := w.store.ApplyEvent(ctx, ev); err != nil {
		w.log.Error().Err(err).
			Str("batch_id", ev.BatchID).
			Int("index", ev.Index).
			Msg("Persist error, retrying")
		// Back to the head so later transitions of the same file stay behind it.
		w.rdb.LPush(context.Background(), queue, result[1])
		w.sleep(ctx)
	}
}

// decode drops payloads that can never be persisted.
func (w *UploadLedgerWorker) decode(raw string) (*model.UploadEvent, bool) {
	var ev model.UploadEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		w.log.Error().Err(err).Msg("Dropping malformed event")
		return nil, false
	}
	if _, err := uuid.Parse(ev.BatchID); err != nil {
		w.log.Error().Str("batch_id", ev.BatchID).Msg("Dropping event with invalid batch id")
		return nil, false
	}
	return &ev, true
}

func (w *UploadLedgerWorker) sleep(ctx context.Context) {
	select {
	case <-time.After(w.retryDelay):
	case <-ctx.Done():
	}
}

// drain persists everything left in the queue before shutdown.
func (w *UploadLedgerWorker) drain(ctx context.Context) {
	queue := config.WorkerKey.PersistUploadEventsQueue
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, queue).Result()
		if err != nil {
			break
		}

		ev, ok := w.decode(raw)
		if !ok {
			continue
		}
		if err := w.store.ApplyEvent(ctx, ev); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.LPush(ctx, queue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
