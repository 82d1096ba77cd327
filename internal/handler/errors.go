package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/middleware"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
)

// failService maps a service error onto the response envelope.
func failService(c *gin.Context, err error) {
	var fe *service.FormError
	var ue *service.UpstreamError

	switch {
	case errors.As(err, &fe):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fe.Fields)
	case errors.As(err, &ue):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrUpstreamRejected, ue.Message)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
	case errors.Is(err, service.ErrQuestionMismatch):
		response.Fail(c, http.StatusConflict, response.ErrQuestionMismatch)
	case errors.Is(err, service.ErrAttemptCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
	case errors.Is(err, service.ErrSubmitBusy):
		response.Fail(c, http.StatusConflict, response.ErrSubmitBusy)
	case errors.Is(err, service.ErrAttemptEmpty):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// identity returns the signed-in user. Routes behind RequireAuth always
// have one; the 401 only guards against a misconfigured route.
func identity(c *gin.Context) (model.Identity, bool) {
	id := middleware.GetIdentity(c)
	if id == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return model.Identity{}, false
	}
	return *id, true
}
