package dto

// UpdateShiftRuleRequest tunes the tenant clock policy.
// Nil fields are left unchanged.
type UpdateShiftRuleRequest struct {
	MinShiftHours  *float64 `json:"min_shift_hours"  binding:"omitempty,min=0"`
	MaxShiftHours  *float64 `json:"max_shift_hours"  binding:"omitempty,gt=0"`
	MaxWeeklyHours *float64 `json:"max_weekly_hours" binding:"omitempty,gt=0"`
	NotifyEmail    *bool    `json:"notify_email"`
	NotifyCalendar *bool    `json:"notify_calendar"`
	AdminEmail     *string  `json:"admin_email" binding:"omitempty,email"`
}

// ShiftRuleResponse is the public view of the tenant clock policy.
type ShiftRuleResponse struct {
	TenantID       string  `json:"tenant_id"`
	MinShiftHours  float64 `json:"min_shift_hours"`
	MaxShiftHours  float64 `json:"max_shift_hours"`
	MaxWeeklyHours float64 `json:"max_weekly_hours"`
	NotifyEmail    bool    `json:"notify_email"`
	NotifyCalendar bool    `json:"notify_calendar"`
	AdminEmail     string  `json:"admin_email"`
	IsDefault      bool    `json:"is_default"` // true when served from config fallback
}
