package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
)

// DocumentHandler lists the user's uploaded documents.
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// ListDocuments godoc
// GET /api/v1/documents?page=N
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"page": "page must be a positive number"})
		return
	}

	p, err := h.documentService.Page(c.Request.Context(), id, page)
	if err != nil {
		failService(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, p.Data, &response.Pagination{
		Page:       page,
		TotalItems: p.Total,
		NextPage:   p.NextPage,
		PrevPage:   p.PrevPage,
	})
}

// ListDocumentOptions godoc
// GET /api/v1/documents/options?pages=N
// Flattens the first N pages into selector options.
func (h *DocumentHandler) ListDocumentOptions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	pages, err := strconv.Atoi(c.DefaultQuery("pages", "1"))
	if err != nil || pages < 1 || pages > 50 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"pages": "pages must be between 1 and 50"})
		return
	}

	opts, err := h.documentService.Options(c.Request.Context(), id, pages)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, opts)
}
