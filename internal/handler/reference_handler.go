package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unidesk/attendance-panel-api/internal/service"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
	"github.com/unidesk/attendance-panel-api/pkg/response"
)

// ReferenceHandler serves the read-only reference lists the forms consume.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler creates a new handler.
func NewReferenceHandler(svc *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: svc}
}

// Departments godoc
// @Summary List departments
// @Description Departments of the staff member's faculty
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/reference/departments [get]
func (h *ReferenceHandler) Departments(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	departments, err := h.service.Departments(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments)
}

// Positions godoc
// @Summary List positions
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/reference/positions [get]
func (h *ReferenceHandler) Positions(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	positions, err := h.service.Positions(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, positions)
}

// Roles godoc
// @Summary List roles
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/reference/roles [get]
func (h *ReferenceHandler) Roles(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	roles, err := h.service.Roles(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles)
}

// Faculty godoc
// @Summary Get faculty info
// @Description The faculty of the authenticated staff member
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/reference/faculty [get]
func (h *ReferenceHandler) Faculty(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info, err := h.service.Faculty(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}
