package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/model"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/quizdesk/quizdesk-web/internal/validator"
)

// UIHandler serves the top bar and the upload drawer flag.
type UIHandler struct {
	uiStateService *service.UIStateService
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(uiStateService *service.UIStateService) *UIHandler {
	return &UIHandler{uiStateService: uiStateService}
}

type drawerRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// TopBar godoc
// GET /api/v1/me/topbar?title=...
func (h *UIHandler) TopBar(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, model.NewTopBar(id, c.Query("title")))
}

// GetDrawer godoc
// GET /api/v1/ui/drawer
func (h *UIHandler) GetDrawer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	open, err := h.uiStateService.Drawer(c.Request.Context(), id.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"open": open})
}

// SetDrawer godoc
// PUT /api/v1/ui/drawer
func (h *UIHandler) SetDrawer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req drawerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.uiStateService.SetDrawer(c.Request.Context(), id.UserID, *req.Open); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"open": *req.Open})
}
