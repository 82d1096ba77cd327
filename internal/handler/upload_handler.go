package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
)

// UploadLedger lists recorded upload outcomes.
type UploadLedger interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.UploadRecord, error)
}

// UploadHandler handles the document upload drawer.
type UploadHandler struct {
	uploadService *service.UploadService
	ledger        UploadLedger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *service.UploadService, ledger UploadLedger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, ledger: ledger}
}

// UploadDocuments godoc
// POST /api/v1/documents/upload
// Accepts one or more multipart "pdf" parts and uploads each independently.
func (h *UploadHandler) UploadDocuments(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadService.MaxRequestBytes())
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrPayloadTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	headers := form.File["pdf"]
	if len(headers) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	files := make([]model.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadedFile(fh))
	}

	report, err := h.uploadService.Run(c.Request.Context(), id, files)
	if err != nil {
		failService(c, err)
		return
	}

	status := http.StatusOK
	if report.Failed > 0 {
		status = http.StatusMultiStatus
	}
	response.Success(c, status, report)
}

// ListUploads godoc
// GET /api/v1/uploads?limit=N
// Returns the user's most recent upload ledger rows.
func (h *UploadHandler) ListUploads(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"limit": "limit must be between 1 and 500"})
		return
	}

	records, err := h.ledger.ListByUser(c.Request.Context(), id.UserID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if records == nil {
		records = []model.UploadRecord{}
	}
	response.Success(c, http.StatusOK, records)
}

func uploadedFile(fh *multipart.FileHeader) model.UploadedFile {
	return model.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
