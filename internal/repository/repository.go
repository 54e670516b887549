package repository

import "gorm.io/gorm"

// Repository aggregates all repositories.
type Repository struct {
	Tenant     TenantRepository
	Staff      StaffRepository
	ShiftRule  ShiftRuleRepository
	TimeRecord TimeRecordRepository
}

// NewRepository builds the repository aggregate over one DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tenant:     NewTenantRepo(db),
		Staff:      NewStaffRepo(db),
		ShiftRule:  NewShiftRuleRepo(db),
		TimeRecord: NewTimeRecordRepo(db),
	}
}
