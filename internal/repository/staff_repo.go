package repository

import (
	"context"

	"gorm.io/gorm"

	"barberbook/backend/internal/model"
	pkgerrors "barberbook/backend/pkg/errors"
)

// StaffRepository is the staff data access interface.
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByID(ctx context.Context, id string) (*model.Staff, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*model.Staff, error)
	List(ctx context.Context, tenantID string, offset, limit int) ([]model.Staff, int64, error)
	Update(ctx context.Context, staff *model.Staff) error
	Deactivate(ctx context.Context, id string, callerID string) error
}

type staffRepo struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("staff_id = ?", id).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, tenantID, email string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) List(ctx context.Context, tenantID string, offset, limit int) ([]model.Staff, int64, error) {
	var staff []model.Staff
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Staff{}).
		Where("tenant_id = ?", tenantID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&staff).Error
	return staff, total, err
}

func (r *staffRepo) Update(ctx context.Context, staff *model.Staff) error {
	oldVersion := staff.Version
	result := r.db.WithContext(ctx).
		Model(staff).
		Where("staff_id = ? AND version = ?", staff.StaffID, oldVersion).
		Updates(map[string]interface{}{
			"name":       staff.Name,
			"email":      staff.Email,
			"role":       staff.Role,
			"is_active":  staff.IsActive,
			"updated_by": staff.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	staff.Version = oldVersion + 1
	return nil
}

func (r *staffRepo) Deactivate(ctx context.Context, id string, callerID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("staff_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": callerID,
		}).Error
}
