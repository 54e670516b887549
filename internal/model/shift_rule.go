package model

// ShiftRule is the per-tenant clock policy row — maps to shift_rules.
// One row per tenant; tenants without a row fall back to configured defaults.
type ShiftRule struct {
	TenantID       string  `gorm:"type:uuid;primaryKey"          json:"tenant_id"`
	MinShiftHours  float64 `gorm:"not null;default:1"            json:"min_shift_hours"`
	MaxShiftHours  float64 `gorm:"not null;default:12"           json:"max_shift_hours"`
	MaxWeeklyHours float64 `gorm:"not null;default:48"           json:"max_weekly_hours"`
	NotifyEmail    bool    `gorm:"not null;default:false"        json:"notify_email"`
	NotifyCalendar bool    `gorm:"not null;default:false"        json:"notify_calendar"`
	AdminEmail     string  `gorm:"type:varchar(255);not null;default:''" json:"admin_email"`
	VersionedModel
}

// TableName sets the table name.
func (ShiftRule) TableName() string { return "shift_rules" }
