package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/quizdesk/quizdesk-web/internal/backend"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/notify"
	"github.com/rs/zerolog"
)

// DefaultMaxUploadBytes is the per-file size cap; files must be strictly smaller.
const DefaultMaxUploadBytes int64 = 35 * 1024 * 1024

// MaxBatchFiles caps how many files one selection may hold.
const MaxBatchFiles = 10

// multipartOverhead allows for part headers and boundaries in a request body.
const multipartOverhead int64 = 64 << 10

const pdfMIME = "application/pdf"

// LedgerSink receives every upload state transition.
type LedgerSink interface {
	Record(ctx context.Context, ev model.UploadEvent) error
}

// UploadService validates a selection of PDFs and uploads each file
// concurrently and independently.
type UploadService struct {
	upstream backend.Client
	docs     *DocumentService
	ui       *UIStateService
	notifier notify.Notifier
	ledger   LedgerSink
	maxBytes int64
	log      zerolog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(
	upstream backend.Client,
	docs *DocumentService,
	ui *UIStateService,
	notifier notify.Notifier,
	ledger LedgerSink,
	maxBytes int64,
	log zerolog.Logger,
) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{
		upstream: upstream,
		docs:     docs,
		ui:       ui,
		notifier: notifier,
		ledger:   ledger,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "upload_service").Logger(),
	}
}

// Validate checks the whole selection. Any invalid file rejects all of them.
func (s *UploadService) Validate(files []model.UploadedFile) error {
	if len(files) == 0 {
		return formError("pdf", "Select at least one PDF file.")
	}
	if len(files) > MaxBatchFiles {
		return formError("pdf", fmt.Sprintf("Select at most %d files.", MaxBatchFiles))
	}

	fields := make(map[string]string)
	for i, f := range files {
		key := fmt.Sprintf("pdf[%d]", i)
		if f.Size >= s.maxBytes {
			fields[key] = fmt.Sprintf("File size should be less than %dMB.", s.maxBytes/(1024*1024))
			continue
		}
		if !isPDF(f) {
			fields[key] = "Only PDFs are allowed."
		}
	}
	if len(fields) > 0 {
		return &FormError{Fields: fields}
	}
	return nil
}

// MaxRequestBytes bounds a whole upload request: a full batch of files just
// under the per-file cap, plus multipart framing.
func (s *UploadService) MaxRequestBytes() int64 {
	return s.maxBytes*MaxBatchFiles + multipartOverhead
}

// isPDF trusts a declared content type and sniffs the content when the type
// is missing or generic.
func isPDF(f model.UploadedFile) bool {
	declared := strings.ToLower(strings.TrimSpace(f.ContentType))
	if declared != "" && declared != "application/octet-stream" {
		return strings.HasPrefix(declared, pdfMIME)
	}
	if f.Open == nil {
		return false
	}
	rc, err := f.Open()
	if err != nil {
		return false
	}
	defer rc.Close()
	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return false
	}
	return mt.Is(pdfMIME)
}

// Run validates files, then starts one upload per file without waiting on
// its siblings. It returns once every task has settled.
func (s *UploadService) Run(ctx context.Context, id model.Identity, files []model.UploadedFile) (*model.BatchReport, error) {
	if err := s.Validate(files); err != nil {
		return nil, err
	}

	// In-flight uploads are not cancelled when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	b := &uploadBatch{
		id:        uuid.New().String(),
		total:     len(files),
		uploading: true,
		outcomes:  make([]model.UploadOutcome, len(files)),
	}
	log := s.log.With().Str("batch_id", b.id).Str("user_id", id.UserID).Int("files", b.total).Logger()
	log.Info().Msg("Upload batch started")

	for i, f := range files {
		b.outcomes[i] = model.UploadOutcome{Index: i, FileName: f.Name, State: model.UploadStateSelected}
		s.record(ctx, b, id, i, f, model.UploadStateSelected, "")
	}
	s.publishProgress(ctx, id, b.snapshot())

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f model.UploadedFile) {
			defer wg.Done()
			s.uploadOne(ctx, log, id, b, i, f)
		}(i, f)
	}
	wg.Wait()

	report := b.report()
	log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Upload batch settled")
	return report, nil
}

func (s *UploadService) uploadOne(ctx context.Context, log zerolog.Logger, id model.Identity, b *uploadBatch, i int, f model.UploadedFile) {
	b.setState(i, model.UploadStateUploading)
	s.record(ctx, b, id, i, f, model.UploadStateUploading, "")

	doc, failure := s.send(ctx, id, f)
	if failure != nil {
		log.Error().Str("file", f.Name).Str("reason", failure.reason).Msg("Upload failed")
		snap := b.fail(i, failure.reason)
		s.record(ctx, b, id, i, f, model.UploadStateFailed, failure.reason)
		_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastError,
			"File upload failed.", failure.description))
		s.afterSettle(ctx, log, id, snap)
		return
	}

	snap := b.succeed(i, doc)
	s.record(ctx, b, id, i, f, model.UploadStateSucceeded, "")
	_ = s.notifier.Publish(ctx, id.UserID, model.ToastEvent(model.ToastSuccess,
		"File Uploaded successfully.",
		fmt.Sprintf("Your file %s has been uploaded successfully.", f.Name)))
	s.afterSettle(ctx, log, id, snap)
}

type uploadFailure struct {
	reason      string
	description string
}

func (s *UploadService) send(ctx context.Context, id model.Identity, f model.UploadedFile) (*model.DocumentMeta, *uploadFailure) {
	couldNot := fmt.Sprintf("Your file %s could not be uploaded.", f.Name)

	rc, err := f.Open()
	if err != nil {
		return nil, &uploadFailure{reason: err.Error(), description: couldNot}
	}
	defer rc.Close()

	res, err := s.upstream.UploadDocument(ctx, id.Token, f.Name, io.Reader(rc))
	if err != nil {
		return nil, &uploadFailure{reason: err.Error(), description: couldNot}
	}
	if res.Failed() {
		return nil, &uploadFailure{
			reason:      res.Error,
			description: fmt.Sprintf("Your file %s failed to upload.", f.Name),
		}
	}
	return res.Data, nil
}

// afterSettle publishes progress and, for the task that settles last, runs
// the batch completion exactly once.
func (s *UploadService) afterSettle(ctx context.Context, log zerolog.Logger, id model.Identity, snap batchSnapshot) {
	s.publishProgress(ctx, id, snap)
	if !snap.completedNow {
		return
	}

	if err := s.docs.Invalidate(ctx, id.UserID); err != nil {
		log.Warn().Err(err).Msg("Document cache invalidation failed")
	}
	if err := s.ui.SetDrawer(ctx, id.UserID, false); err != nil {
		log.Warn().Err(err).Msg("Closing upload drawer failed")
	}
	_ = s.notifier.Publish(ctx, id.UserID, model.Event{
		Type:     model.EventBatchCompleted,
		Progress: snap.progressEvent(),
		At:       time.Now().UTC(),
	})
}

func (s *UploadService) publishProgress(ctx context.Context, id model.Identity, snap batchSnapshot) {
	_ = s.notifier.Publish(ctx, id.UserID, model.Event{
		Type:     model.EventUploadProgress,
		Progress: snap.progressEvent(),
		At:       time.Now().UTC(),
	})
}

func (s *UploadService) record(ctx context.Context, b *uploadBatch, id model.Identity, i int, f model.UploadedFile, state model.UploadState, reason string) {
	if s.ledger == nil {
		return
	}
	err := s.ledger.Record(ctx, model.UploadEvent{
		BatchID:    b.id,
		UserID:     id.UserID,
		Index:      i,
		FileName:   f.Name,
		SizeBytes:  f.Size,
		State:      state,
		Error:      reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("batch_id", b.id).Int("index", i).Msg("Ledger record failed")
	}
}

// uploadBatch is the shared state of one batch. Completion is a settled
// count reaching total, independent of which index finishes last.
type uploadBatch struct {
	mu        sync.Mutex
	id        string
	total     int
	settled   int
	succeeded int
	failed    int
	progress  float64
	uploading bool
	completed bool
	outcomes  []model.UploadOutcome
}

type batchSnapshot struct {
	batchID      string
	progress     float64
	uploading    bool
	settled      int
	total        int
	completedNow bool
}

func (s batchSnapshot) progressEvent() *model.UploadProgress {
	return &model.UploadProgress{
		BatchID:   s.batchID,
		Progress:  s.progress,
		Uploading: s.uploading,
		Settled:   s.settled,
		Total:     s.total,
	}
}

func (b *uploadBatch) setState(i int, state model.UploadState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes[i].State = state
}

func (b *uploadBatch) succeed(i int, doc *model.DocumentMeta) batchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes[i].State = model.UploadStateSucceeded
	b.outcomes[i].Document = doc
	b.succeeded++
	b.progress += 100 / float64(b.total)
	return b.settleLocked()
}

// fail clears the uploading flag at once; siblings keep running.
func (b *uploadBatch) fail(i int, reason string) batchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes[i].State = model.UploadStateFailed
	b.outcomes[i].Error = reason
	b.failed++
	b.uploading = false
	return b.settleLocked()
}

func (b *uploadBatch) settleLocked() batchSnapshot {
	b.settled++
	completedNow := false
	if b.settled == b.total && !b.completed {
		b.completed = true
		b.uploading = false
		completedNow = true
	}
	snap := b.snapshotLocked()
	snap.completedNow = completedNow
	return snap
}

func (b *uploadBatch) snapshot() batchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *uploadBatch) snapshotLocked() batchSnapshot {
	return batchSnapshot{
		batchID:   b.id,
		progress:  b.progress,
		uploading: b.uploading,
		settled:   b.settled,
		total:     b.total,
	}
}

func (b *uploadBatch) report() *model.BatchReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &model.BatchReport{
		BatchID:   b.id,
		Total:     b.total,
		Succeeded: b.succeeded,
		Failed:    b.failed,
		Progress:  b.progress,
		Outcomes:  append([]model.UploadOutcome(nil), b.outcomes...),
	}
}
