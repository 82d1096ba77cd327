package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdesk/quizdesk-web/internal/model"
)

// UploadRepository persists the upload ledger.
type UploadRepository struct {
	pool *pgxpool.Pool
}

// NewUploadRepository creates a new UploadRepository.
func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

// ApplyEvent upserts one file's row. Settled rows are never moved back to an
// earlier state, and an event older than the row is ignored.
func (r *UploadRepository) ApplyEvent(ctx context.Context, ev *model.UploadEvent) error {
	batchID, err := uuid.Parse(ev.BatchID)
	if err != nil {
		return fmt.Errorf("parse batch id: %w", err)
	}

	var errText *string
	if ev.Error != "" {
		errText = &ev.Error
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO upload_files (batch_id, user_id, file_index, file_name, size_bytes, state, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 ON CONFLICT (batch_id, file_index) DO UPDATE
		 SET state = EXCLUDED.state, error = EXCLUDED.error, updated_at = EXCLUDED.updated_at
		 WHERE upload_files.state NOT IN ('succeeded', 'failed')
		   AND EXCLUDED.updated_at >= upload_files.updated_at`,
		batchID, ev.UserID, ev.Index, ev.FileName, ev.SizeBytes, ev.State, errText, ev.OccurredAt,
	)
	return err
}

// ListByUser returns the most recent ledger rows of a user.
func (r *UploadRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.UploadRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT batch_id, file_index, file_name, size_bytes, state, error, created_at, updated_at
		 FROM upload_files
		 WHERE user_id = $1
		 ORDER BY created_at DESC, file_index
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.UploadRecord
	for rows.Next() {
		var rec model.UploadRecord
		var batchID uuid.UUID
		if err := rows.Scan(&batchID, &rec.FileIndex, &rec.FileName, &rec.SizeBytes,
			&rec.State, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.BatchID = batchID.String()
		records = append(records, rec)
	}
	return records, rows.Err()
}
