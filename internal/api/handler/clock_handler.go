package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/policy"
	"barberbook/backend/internal/service"
	pkgerrors "barberbook/backend/pkg/errors"
	"barberbook/backend/pkg/response"
)

// ClockHandler serves the staff-schedule clock endpoints.
type ClockHandler struct {
	clockSvc     service.ClockService
	timesheetSvc service.TimesheetService
}

// NewClockHandler creates a ClockHandler.
func NewClockHandler(clockSvc service.ClockService, timesheetSvc service.TimesheetService) *ClockHandler {
	return &ClockHandler{clockSvc: clockSvc, timesheetSvc: timesheetSvc}
}

// Clock records a clock-in or clock-out for the authenticated staff member.
// POST /api/v1/staff-schedules/clock
func (h *ClockHandler) Clock(c *gin.Context) {
	staffID, ok := MustGetStaffID(c)
	if !ok {
		return
	}
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	result, err := h.clockSvc.Clock(c.Request.Context(), tenantID, staffID, policy.Action(req.Action))
	if err != nil {
		h.writeClockError(c, err)
		return
	}

	response.OK(c, result)
}

// writeClockError maps clock service errors onto the response envelope.
// Policy rejections carry their reason as the message and the human detail
// in the details field.
func (h *ClockHandler) writeClockError(c *gin.Context, err error) {
	var rejection *service.ClockRejectionError
	switch {
	case errors.As(err, &rejection):
		d := rejection.Decision
		response.ErrorWithDetails(c, http.StatusBadRequest, rejectionCode(d.Reason), string(d.Reason), d.Detail)
	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, 20001, "staff member not found")
	case errors.Is(err, service.ErrStaffInactive):
		response.Forbidden(c, 20003, "staff member is deactivated")
	case errors.Is(err, pkgerrors.ErrConcurrentClock):
		response.Conflict(c, 30006, "another clock request is in flight, retry")
	default:
		response.InternalError(c)
	}
}

// rejectionCode assigns each policy reason its module error code.
func rejectionCode(reason policy.Reason) int {
	switch reason {
	case policy.ReasonInvalidAction:
		return 30001
	case policy.ReasonAlreadyClockedIn:
		return 30002
	case policy.ReasonNoOpenShift:
		return 30003
	case policy.ReasonShiftDurationOutOfRange:
		return 30004
	case policy.ReasonWeeklyHoursExceeded:
		return 30005
	default:
		return 30000
	}
}

// Records lists clock records. Staff see their own; admins and owners may
// pass staff_id to inspect any staff member of their tenant.
// GET /api/v1/staff-schedules/records
func (h *ClockHandler) Records(c *gin.Context) {
	staffID, tenantID, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	now := time.Now().UTC()
	from, to, err := parseRange(req.From, req.To, now)
	if err != nil {
		response.BadRequest(c, 10001, "from/to must be RFC 3339 timestamps")
		return
	}

	records, err := h.timesheetSvc.ListRecords(c.Request.Context(), tenantID, staffID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			response.NotFound(c, 20001, "staff member not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, records)
}

// Summary returns the trailing-7-day shift summary.
// GET /api/v1/staff-schedules/summary
func (h *ClockHandler) Summary(c *gin.Context) {
	staffID, tenantID, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	summary, err := h.timesheetSvc.Summary(c.Request.Context(), tenantID, staffID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			response.NotFound(c, 20001, "staff member not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}

// resolveTarget decides which staff member the request is about: the caller
// by default, or the staff_id query parameter for admins and owners.
func (h *ClockHandler) resolveTarget(c *gin.Context) (staffID, tenantID string, ok bool) {
	staffID, ok = MustGetStaffID(c)
	if !ok {
		return "", "", false
	}
	tenantID, ok = MustGetTenantID(c)
	if !ok {
		return "", "", false
	}

	if target := c.Query("staff_id"); target != "" && target != staffID {
		role, ok := MustGetRole(c)
		if !ok {
			return "", "", false
		}
		if role != model.RoleAdmin && role != model.RoleOwner {
			response.Forbidden(c, 10003, "insufficient role")
			return "", "", false
		}
		staffID = target
	}

	return staffID, tenantID, true
}

// parseRange applies the trailing-window default to an optional range.
func parseRange(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	from := now.Add(-policy.TrailingWindow)
	to := now

	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
