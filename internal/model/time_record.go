package model

import "time"

// Clock actions as stored.
const (
	ActionClockIn  = "clock_in"
	ActionClockOut = "clock_out"
)

// TimeRecord is one clock event — maps to time_records.
// Records are append-only: the application never updates or deletes them.
// DurationHours and WeeklyHours are denormalized snapshots written on
// accepted clock-outs so timesheet reads do not recompute history.
type TimeRecord struct {
	RecordID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	TenantID      string    `gorm:"type:uuid;not null"                             json:"tenant_id"`
	StaffID       string    `gorm:"type:uuid;not null"                             json:"staff_id"`
	Action        string    `gorm:"type:varchar(10);not null"                      json:"action"`
	RecordedAt    time.Time `gorm:"not null"                                       json:"recorded_at"`
	DurationHours *float64  `json:"duration_hours,omitempty"`
	WeeklyHours   *float64  `json:"weekly_hours,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Staff *Staff `gorm:"foreignKey:StaffID;references:StaffID" json:"staff,omitempty"`
}

// TableName sets the table name.
func (TimeRecord) TableName() string { return "time_records" }
