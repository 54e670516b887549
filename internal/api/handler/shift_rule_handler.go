package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/service"
	pkgerrors "barberbook/backend/pkg/errors"
	"barberbook/backend/pkg/response"
)

// ShiftRuleHandler serves the per-tenant clock policy endpoints.
type ShiftRuleHandler struct {
	ruleSvc service.ShiftRuleService
}

// NewShiftRuleHandler creates a ShiftRuleHandler.
func NewShiftRuleHandler(ruleSvc service.ShiftRuleService) *ShiftRuleHandler {
	return &ShiftRuleHandler{ruleSvc: ruleSvc}
}

// Get returns the tenant's shift rules.
// GET /api/v1/shift-rules
func (h *ShiftRuleHandler) Get(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.ruleSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Update patches the tenant's shift rules.
// PUT /api/v1/shift-rules
func (h *ShiftRuleHandler) Update(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetStaffID(c)
	if !ok {
		return
	}

	var req dto.UpdateShiftRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	result, err := h.ruleSvc.Update(c.Request.Context(), tenantID, &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRuleBoundsInvalid):
			response.BadRequest(c, 40001, "min_shift_hours must not exceed max_shift_hours")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 40002, "shift rules were modified concurrently, retry")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
