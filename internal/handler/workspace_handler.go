package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unidesk/attendance-panel-api/internal/models"
	"github.com/unidesk/attendance-panel-api/internal/service"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
	"github.com/unidesk/attendance-panel-api/pkg/response"
)

// WorkspaceHandler wires HTTP endpoints to the staff workspace service.
type WorkspaceHandler struct {
	service *service.WorkspaceService
}

// NewWorkspaceHandler creates a new handler.
func NewWorkspaceHandler(svc *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: svc}
}

type setScopeRequest struct {
	DepartmentID string `json:"departmentId"`
}

type openFormRequest struct {
	Mode     models.FormMode `json:"mode" binding:"required"`
	TargetID *int            `json:"targetId,omitempty"`
}

type setFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// Snapshot godoc
// @Summary Get workspace snapshot
// @Description Returns the current scope, roster and form state
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/workspace [get]
func (h *WorkspaceHandler) Snapshot(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Snapshot(session))
}

// SetScope godoc
// @Summary Select department scope
// @Description Switch the workspace to a department and fetch its roster
// @Tags Workspace
// @Accept json
// @Produce json
// @Param payload body setScopeRequest true "Scope payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/workspace/scope [put]
func (h *WorkspaceHandler) SetScope(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req setScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scope payload"))
		return
	}

	view, err := h.service.SetScope(c.Request.Context(), session, models.ScopeKey(req.DepartmentID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Refresh godoc
// @Summary Refresh roster
// @Description Re-fetch the roster of the selected department
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /staff/workspace/refresh [post]
func (h *WorkspaceHandler) Refresh(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.Refresh(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// OpenForm godoc
// @Summary Open an employee form
// @Description Start an add or edit form session for the workspace
// @Tags Workspace
// @Accept json
// @Produce json
// @Param payload body openFormRequest true "Form payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff/workspace/form [post]
func (h *WorkspaceHandler) OpenForm(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req openFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	view, err := h.service.OpenForm(session, req.Mode, req.TargetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SetField godoc
// @Summary Edit a form field
// @Description Update one field of the open form session and clear its error
// @Tags Workspace
// @Accept json
// @Produce json
// @Param payload body setFieldRequest true "Field payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/workspace/form/fields [patch]
func (h *WorkspaceHandler) SetField(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field payload"))
		return
	}

	view, err := h.service.SetField(session, req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Submit godoc
// @Summary Submit the open form
// @Description Validate the form and forward the create or update to the core API
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff/workspace/form/submit [post]
func (h *WorkspaceHandler) Submit(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.Submit(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// DeleteEmployee godoc
// @Summary Delete an employee
// @Description Remove an employee from the active scope via the core API
// @Tags Workspace
// @Produce json
// @Param id path int true "Employee id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /staff/workspace/employees/{id} [delete]
func (h *WorkspaceHandler) DeleteEmployee(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid employee id"))
		return
	}

	view, err := h.service.DeleteEmployee(c.Request.Context(), session, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// CancelForm godoc
// @Summary Cancel the open form
// @Description Discard the form session and its buffer
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff/workspace/form [delete]
func (h *WorkspaceHandler) CancelForm(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.CancelForm(session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
