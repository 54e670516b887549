package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/policy"
	"barberbook/backend/internal/repository"
)

// TimesheetService reads clock history: raw records and the trailing-7-day
// summary.
type TimesheetService interface {
	// ListRecords returns a staff member's records within [from, to],
	// ascending.
	ListRecords(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]dto.TimeRecordResponse, error)
	// Summary pairs the staff member's trailing-7-day records into
	// completed shifts with a total.
	Summary(ctx context.Context, tenantID, staffID string, now time.Time) (*dto.SummaryResponse, error)
}

type timesheetService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimesheetService creates a TimesheetService instance.
func NewTimesheetService(repo *repository.Repository, logger *zap.Logger) TimesheetService {
	return &timesheetService{repo: repo, logger: logger}
}

func (s *timesheetService) ListRecords(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]dto.TimeRecordResponse, error) {
	if err := s.checkStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	records, err := s.repo.TimeRecord.ListRange(ctx, tenantID, staffID, from, to)
	if err != nil {
		s.logger.Error("time record range query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	out := make([]dto.TimeRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	return out, nil
}

func (s *timesheetService) Summary(ctx context.Context, tenantID, staffID string, now time.Time) (*dto.SummaryResponse, error) {
	if err := s.checkStaff(ctx, tenantID, staffID); err != nil {
		return nil, err
	}

	now = now.UTC()
	from := now.Add(-policy.TrailingWindow)
	records, err := s.repo.TimeRecord.ListSince(ctx, tenantID, staffID, from)
	if err != nil {
		s.logger.Error("time record window query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	history := make([]policy.Record, 0, len(records))
	for _, r := range records {
		history = append(history, toPolicyRecord(r))
	}
	shifts, open := policy.PairShifts(history)

	resp := &dto.SummaryResponse{
		StaffID: staffID,
		From:    from.Format(time.RFC3339),
		To:      now.Format(time.RFC3339),
		Shifts:  make([]dto.ShiftResponse, 0, len(shifts)),
	}
	for _, sh := range shifts {
		resp.Shifts = append(resp.Shifts, dto.ShiftResponse{
			ClockIn:       sh.Start.UTC().Format(time.RFC3339),
			ClockOut:      sh.End.UTC().Format(time.RFC3339),
			DurationHours: sh.Hours(),
		})
		resp.TotalHours += sh.Hours()
	}
	if open != nil {
		ts := open.UTC().Format(time.RFC3339)
		resp.OpenShiftAt = &ts
	}
	return resp, nil
}

func (s *timesheetService) checkStaff(ctx context.Context, tenantID, staffID string) error {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if staff.TenantID != tenantID {
		return ErrStaffNotFound
	}
	return nil
}
