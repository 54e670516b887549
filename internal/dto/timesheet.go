package dto

// ShiftResponse is one completed shift in a timesheet.
type ShiftResponse struct {
	ClockIn       string  `json:"clock_in"`
	ClockOut      string  `json:"clock_out"`
	DurationHours float64 `json:"duration_hours"`
}

// SummaryResponse is a staff member's trailing-7-day summary.
type SummaryResponse struct {
	StaffID     string          `json:"staff_id"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Shifts      []ShiftResponse `json:"shifts"`
	TotalHours  float64         `json:"total_hours"`
	OpenShiftAt *string         `json:"open_shift_at,omitempty"`
}

// ExportRequest selects the timesheet export range.
type ExportRequest struct {
	From string `form:"from" binding:"required"` // RFC 3339
	To   string `form:"to"   binding:"required"` // RFC 3339
}
