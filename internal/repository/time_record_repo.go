package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"barberbook/backend/internal/model"
	pkgerrors "barberbook/backend/pkg/errors"
)

// TimeRecordRepository is the append-only clock event store.
// There is deliberately no update or delete operation.
type TimeRecordRepository interface {
	// FindLatest returns the most recent record for the key, or
	// gorm.ErrRecordNotFound.
	FindLatest(ctx context.Context, tenantID, staffID string) (*model.TimeRecord, error)
	// ListSince returns the key's records with recorded_at >= since,
	// ascending.
	ListSince(ctx context.Context, tenantID, staffID string, since time.Time) ([]model.TimeRecord, error)
	// ListRange returns a tenant's records within [from, to], ascending,
	// optionally narrowed to one staff member.
	ListRange(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]model.TimeRecord, error)
	// Insert appends record, guarding against concurrent writers:
	// the insert fails with pkg/errors.ErrConcurrentClock when a record
	// newer than the caller's history snapshot already exists for the key.
	// snapshotLatest is the recorded_at of the newest record the caller
	// observed, or nil when the history was empty.
	// Writers for the same (tenant, staff) key serialize on an advisory
	// transaction lock, so the snapshot check always runs against the
	// latest committed record.
	Insert(ctx context.Context, record *model.TimeRecord, snapshotLatest *time.Time) error
}

type timeRecordRepo struct {
	db *gorm.DB
}

func NewTimeRecordRepo(db *gorm.DB) TimeRecordRepository {
	return &timeRecordRepo{db: db}
}

func (r *timeRecordRepo) FindLatest(ctx context.Context, tenantID, staffID string) (*model.TimeRecord, error) {
	var record model.TimeRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND staff_id = ?", tenantID, staffID).
		Order("recorded_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *timeRecordRepo) ListSince(ctx context.Context, tenantID, staffID string, since time.Time) ([]model.TimeRecord, error) {
	var records []model.TimeRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND staff_id = ? AND recorded_at >= ?", tenantID, staffID, since).
		Order("recorded_at ASC").
		Find(&records).Error
	return records, err
}

func (r *timeRecordRepo) ListRange(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]model.TimeRecord, error) {
	var records []model.TimeRecord
	db := r.db.WithContext(ctx).
		Where("tenant_id = ? AND recorded_at >= ? AND recorded_at <= ?", tenantID, from, to)
	if staffID != "" {
		db = db.Where("staff_id = ?", staffID)
	}
	err := db.Order("recorded_at ASC").Find(&records).Error
	return records, err
}

func (r *timeRecordRepo) Insert(ctx context.Context, record *model.TimeRecord, snapshotLatest *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A row lock on the latest record is not enough under READ
		// COMMITTED: two transactions can lock the same pre-existing row
		// and both miss each other's insert. The advisory lock keys on
		// (tenant, staff) and is held until commit, so the second writer
		// reads after the first one's commit is visible.
		lockKey := record.TenantID + ":" + record.StaffID
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", lockKey).Error; err != nil {
			return err
		}

		var latest model.TimeRecord
		err := tx.
			Where("tenant_id = ? AND staff_id = ?", record.TenantID, record.StaffID).
			Order("recorded_at DESC").
			First(&latest).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no records at all: the snapshot must have been empty too
			if snapshotLatest != nil {
				return pkgerrors.ErrConcurrentClock
			}
		case err != nil:
			return err
		default:
			if snapshotLatest == nil || latest.RecordedAt.After(*snapshotLatest) {
				return pkgerrors.ErrConcurrentClock
			}
		}
		return tx.Create(record).Error
	})
}
