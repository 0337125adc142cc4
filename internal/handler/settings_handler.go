package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unidesk/attendance-panel-api/internal/models"
	"github.com/unidesk/attendance-panel-api/internal/service"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
	"github.com/unidesk/attendance-panel-api/pkg/response"
)

// SettingsHandler serves the account-settings endpoints.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// ChangePassword godoc
// @Summary Change password
// @Description Change the password of the authenticated user via the core API
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /settings/change-password [post]
func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	fieldErrors, err := h.service.ChangePassword(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(c, fieldErrors)
		return
	}
	response.NoContent(c)
}
