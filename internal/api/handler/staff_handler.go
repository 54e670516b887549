package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/service"
	pkgerrors "barberbook/backend/pkg/errors"
	"barberbook/backend/pkg/response"
)

// StaffHandler serves the staff administration endpoints.
type StaffHandler struct {
	staffSvc service.StaffService
}

// NewStaffHandler creates a StaffHandler.
func NewStaffHandler(staffSvc service.StaffService) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc}
}

// Create registers a new staff member.
// POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	result, err := h.staffSvc.Create(c.Request.Context(), tenantID, &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, 20002, "email is already registered")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Get returns one staff member.
// GET /api/v1/staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.staffSvc.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			response.NotFound(c, 20001, "staff member not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// List returns the tenant's staff, paginated.
// GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	list, total, err := h.staffSvc.List(c.Request.Context(), tenantID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Update patches a staff member.
// PUT /api/v1/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	result, err := h.staffSvc.Update(c.Request.Context(), tenantID, c.Param("id"), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffNotFound):
			response.NotFound(c, 20001, "staff member not found")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 20004, "staff member was modified concurrently, retry")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Deactivate disables a staff account.
// DELETE /api/v1/staff/:id
func (h *StaffHandler) Deactivate(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	if err := h.staffSvc.Deactivate(c.Request.Context(), tenantID, c.Param("id"), callerID); err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			response.NotFound(c, 20001, "staff member not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
