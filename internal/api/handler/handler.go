package handler

import "barberbook/backend/internal/service"

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth      *AuthHandler
	Clock     *ClockHandler
	Staff     *StaffHandler
	ShiftRule *ShiftRuleHandler
	Export    *ExportHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Clock:     NewClockHandler(svc.Clock, svc.Timesheet),
		Staff:     NewStaffHandler(svc.Staff),
		ShiftRule: NewShiftRuleHandler(svc.ShiftRule),
		Export:    NewExportHandler(svc.Export),
	}
}
