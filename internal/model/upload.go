package model

import (
	"io"
	"time"
)

// UploadState tracks one file through a batch.
type UploadState string

const (
	UploadStateSelected  UploadState = "selected"
	UploadStateUploading UploadState = "uploading"
	UploadStateSucceeded UploadState = "succeeded"
	UploadStateFailed    UploadState = "failed"
)

// UploadedFile wraps one file handle picked for upload.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadOutcome is the settled result of one file in a batch.
type UploadOutcome struct {
	Index    int           `json:"index"`
	FileName string        `json:"file_name"`
	State    UploadState   `json:"state"`
	Document *DocumentMeta `json:"document,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BatchReport summarizes a finished upload batch.
type BatchReport struct {
	BatchID   string          `json:"batch_id"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Progress  float64         `json:"progress"`
	Outcomes  []UploadOutcome `json:"outcomes"`
}

// UploadEvent is one state transition queued for the upload ledger.
type UploadEvent struct {
	BatchID    string      `json:"batch_id"`
	UserID     string      `json:"user_id"`
	Index      int         `json:"index"`
	FileName   string      `json:"file_name"`
	SizeBytes  int64       `json:"size_bytes"`
	State      UploadState `json:"state"`
	Error      string      `json:"error,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// UploadRecord is the persisted ledger row for one file.
type UploadRecord struct {
	BatchID   string      `json:"batch_id"`
	FileIndex int         `json:"file_index"`
	FileName  string      `json:"file_name"`
	SizeBytes int64       `json:"size_bytes"`
	State     UploadState `json:"state"`
	Error     *string     `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
