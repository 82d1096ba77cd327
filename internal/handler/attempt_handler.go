package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/quizdesk/quizdesk-web/internal/validator"
)

// AttemptHandler serves the question-by-question answer flow.
type AttemptHandler struct {
	attemptService *service.AttemptService
	answerService  *service.AnswerService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, answerService *service.AnswerService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, answerService: answerService}
}

// CurrentQuestion godoc
// GET /api/v1/attempts/:attempt_id/current
func (h *AttemptHandler) CurrentQuestion(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	attemptID, ok := attemptParam(c)
	if !ok {
		return
	}

	view, err := h.attemptService.Current(c.Request.Context(), id, attemptID)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SubmitAnswer godoc
// POST /api/v1/attempts/:attempt_id/answers
// Saves the answer to the current question and advances the attempt.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	attemptID, ok := attemptParam(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.answerService.Submit(c.Request.Context(), id, attemptID, req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// attemptParam rejects ids that could escape their Redis key.
func attemptParam(c *gin.Context) (string, bool) {
	raw := c.Param("attempt_id")
	if !validID(raw) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return raw, true
}

func validID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
