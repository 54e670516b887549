package dto

// ClockRequest is the inbound clock action.
// Staff and tenant identity come from the access token, not the body.
type ClockRequest struct {
	Action string `json:"action" binding:"required"`
}

// ClockResponse is returned for an accepted clock action.
// The computed hour fields are present only for clock-outs.
type ClockResponse struct {
	Record        TimeRecordResponse `json:"record"`
	DurationHours *float64           `json:"computed_duration_hours,omitempty"`
	WeeklyHours   *float64           `json:"computed_weekly_hours,omitempty"`
}

// TimeRecordResponse is the public view of one clock event.
type TimeRecordResponse struct {
	ID            string   `json:"id"`
	StaffID       string   `json:"staff_id"`
	TenantID      string   `json:"tenant_id"`
	Action        string   `json:"action"`
	RecordedAt    string   `json:"recorded_at"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	WeeklyHours   *float64 `json:"weekly_hours,omitempty"`
}

// RecordListRequest filters a staff member's clock records. The trailing
// window bounds the result size, so the listing is not paginated.
type RecordListRequest struct {
	StaffID string `form:"staff_id"` // admin only; staff always see their own
	From    string `form:"from"`     // RFC 3339, optional
	To      string `form:"to"`       // RFC 3339, optional
}
