package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/quizdesk/quizdesk-web/internal/validator"
)

// QuizHandler handles the quiz generation form.
type QuizHandler struct {
	quizFormService *service.QuizFormService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizFormService *service.QuizFormService) *QuizHandler {
	return &QuizHandler{quizFormService: quizFormService}
}

// FormOptions godoc
// GET /api/v1/quizzes/form-options?pages=N
// Returns the document, question type and difficulty selectors.
func (h *QuizHandler) FormOptions(c *gin.Context) {
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

	opts, err := h.quizFormService.FormOptions(c.Request.Context(), id, pages)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, opts)
}

// GenerateQuiz godoc
// POST /api/v1/quizzes/generate
// On failure the submitted form is echoed back so the client can keep it.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.quizFormService.Submit(c.Request.Context(), id, req)
	if err != nil {
		var ue *service.UpstreamError
		switch {
		case errors.As(err, &ue):
			response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrUpstreamRejected, ue.Message, gin.H{"form": req})
		case errors.Is(err, service.ErrUpstreamUnavailable):
			response.FailWithData(c, http.StatusBadGateway, response.ErrUpstreamUnavailable,
				response.GetMessage(response.ErrUpstreamUnavailable), gin.H{"form": req})
		default:
			failService(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, res)
}

// GetDraft godoc
// GET /api/v1/quizzes/generate/draft
// Returns the form preserved by the last failed generation, or null.
func (h *QuizHandler) GetDraft(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	draft, err := h.quizFormService.Draft(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, draft)
}
