package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	mu      sync.Mutex
	applied []model.UploadEvent
	failFor int
}

func (m *memLedger) ApplyEvent(_ context.Context, ev *model.UploadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor > 0 {
		m.failFor--
		return errors.New("connection reset")
	}
	m.applied = append(m.applied, *ev)
	return nil
}

func (m *memLedger) states() []model.UploadState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.UploadState, 0, len(m.applied))
	for _, ev := range m.applied {
		out = append(out, ev.State)
	}
	return out
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applied)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func push(t *testing.T, rdb *redis.Client, ev model.UploadEvent) {
	t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.PersistUploadEventsQueue, raw).Err())
}

func TestUploadLedgerWorkerPersistsEvents(t *testing.T) {
	_, rdb := newRedis(t)
	store := &memLedger{failFor: 1}
	w := NewUploadLedgerWorker(store, rdb, zerolog.Nop())
	w.retryDelay = 10 * time.Millisecond

	batch := uuid.NewString()
	push(t, rdb, model.UploadEvent{BatchID: batch, Index: 0, FileName: "a.pdf", State: model.UploadStateSelected})
	push(t, rdb, model.UploadEvent{BatchID: batch, Index: 0, FileName: "a.pdf", State: model.UploadStateUploading})
	push(t, rdb, model.UploadEvent{BatchID: batch, Index: 0, FileName: "a.pdf", State: model.UploadStateSucceeded})

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return store.count() == 3 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	<-w.Done()

	// The failed first write is retried before the events queued behind it.
	assert.Equal(t, []model.UploadState{
		model.UploadStateSelected, model.UploadStateUploading, model.UploadStateSucceeded,
	}, store.states())
}

func TestUploadLedgerWorkerDropsInvalidEvents(t *testing.T) {
	_, rdb := newRedis(t)
	store := &memLedger{}
	w := NewUploadLedgerWorker(store, rdb, zerolog.Nop())

	require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.PersistUploadEventsQueue, "{not json").Err())
	push(t, rdb, model.UploadEvent{BatchID: "not-a-uuid", State: model.UploadStateFailed})
	push(t, rdb, model.UploadEvent{BatchID: uuid.NewString(), State: model.UploadStateFailed})

	w.drain(context.Background())
	assert.Equal(t, 1, store.count())

	n, err := rdb.LLen(context.Background(), config.WorkerKey.PersistUploadEventsQueue).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadLedgerWorkerDrainsOnShutdown(t *testing.T) {
	_, rdb := newRedis(t)
	store := &memLedger{}
	w := NewUploadLedgerWorker(store, rdb, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		push(t, rdb, model.UploadEvent{BatchID: uuid.NewString(), Index: i, State: model.UploadStateSelected})
	}

	w.Start(ctx)
	assert.Equal(t, 3, store.count())
}
