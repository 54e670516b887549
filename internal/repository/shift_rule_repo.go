package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"barberbook/backend/internal/model"
	pkgerrors "barberbook/backend/pkg/errors"
)

// ShiftRuleRepository is the per-tenant shift policy data access interface.
type ShiftRuleRepository interface {
	GetByTenant(ctx context.Context, tenantID string) (*model.ShiftRule, error)
	Upsert(ctx context.Context, rule *model.ShiftRule) error
}

type shiftRuleRepo struct {
	db *gorm.DB
}

func NewShiftRuleRepo(db *gorm.DB) ShiftRuleRepository {
	return &shiftRuleRepo{db: db}
}

func (r *shiftRuleRepo) GetByTenant(ctx context.Context, tenantID string) (*model.ShiftRule, error) {
	var rule model.ShiftRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *shiftRuleRepo) Upsert(ctx context.Context, rule *model.ShiftRule) error {
	var existing model.ShiftRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", rule.TenantID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rule.Version = 1
		return r.db.WithContext(ctx).Create(rule).Error
	}
	if err != nil {
		return err
	}

	oldVersion := rule.Version
	result := r.db.WithContext(ctx).
		Model(&model.ShiftRule{}).
		Where("tenant_id = ? AND version = ?", rule.TenantID, oldVersion).
		Updates(map[string]interface{}{
			"min_shift_hours":  rule.MinShiftHours,
			"max_shift_hours":  rule.MaxShiftHours,
			"max_weekly_hours": rule.MaxWeeklyHours,
			"notify_email":     rule.NotifyEmail,
			"notify_calendar":  rule.NotifyCalendar,
			"admin_email":      rule.AdminEmail,
			"updated_by":       rule.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rule.Version = oldVersion + 1
	return nil
}
