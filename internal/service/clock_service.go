package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"barberbook/backend/config"
	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/policy"
	"barberbook/backend/internal/repository"
	pkgerrors "barberbook/backend/pkg/errors"
)

// ── clock module errors ──

var (
	ErrStaffNotFound         = errors.New("staff member not found")
	ErrStaffInactive         = errors.New("staff member is deactivated")
	ErrDependencyUnavailable = errors.New("a required dependency is unavailable")
)

// ClockRejectionError carries a policy rejection across the service
// boundary. Rejections are expected outcomes, not failures; the handler
// unwraps the decision to build a precise 400 response.
type ClockRejectionError struct {
	Decision policy.Decision
}

func (e *ClockRejectionError) Error() string {
	return fmt.Sprintf("clock action rejected: %s (%s)", e.Decision.Reason, e.Decision.Detail)
}

// ClockLocker serializes clock actions per (tenant, staff) key across
// server instances. Acquire returns false when another request holds the
// lock.
type ClockLocker interface {
	AcquireClockLock(ctx context.Context, tenantID, staffID string, ttl time.Duration) (bool, error)
	ReleaseClockLock(ctx context.Context, tenantID, staffID string) error
}

// clockLockTTL bounds how long a crashed request can hold a distributed
// lock.
const clockLockTTL = 10 * time.Second

// notifyTimeout bounds the fire-and-forget notification dispatch.
const notifyTimeout = 5 * time.Second

// ClockService handles clock-in/clock-out requests.
type ClockService interface {
	// Clock validates and persists one clock action for the staff member.
	// Policy rejections are returned as *ClockRejectionError; a lost race
	// against a concurrent request surfaces pkg/errors.ErrConcurrentClock.
	Clock(ctx context.Context, tenantID, staffID string, action policy.Action) (*dto.ClockResponse, error)
}

type clockService struct {
	cfg      *config.Config
	repo     *repository.Repository
	locker   ClockLocker // nil when Redis is down; local serialization still applies
	notifier Notifier
	logger   *zap.Logger

	now func() time.Time

	// local per-key serialization; the distributed lock covers other
	// instances, this covers goroutines in this one
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewClockService creates a ClockService instance.
func NewClockService(
	cfg *config.Config,
	repo *repository.Repository,
	locker ClockLocker,
	notifier Notifier,
	logger *zap.Logger,
) ClockService {
	return &clockService{
		cfg:      cfg,
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *clockService) Clock(ctx context.Context, tenantID, staffID string, action policy.Action) (*dto.ClockResponse, error) {
	// 1. resolve the staff member
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if staff.TenantID != tenantID {
		return nil, ErrStaffNotFound
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}

	// 2. load the tenant policy (config fallback when no row exists)
	rules, ruleRow, err := s.loadRules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// 3. serialize per (tenant, staff)
	unlockLocal := s.lockLocal(tenantID, staffID)
	defer unlockLocal()

	if s.locker != nil {
		acquired, err := s.locker.AcquireClockLock(ctx, tenantID, staffID, clockLockTTL)
		if err != nil {
			// Redis trouble: the local mutex and the conditional insert
			// still guard correctness, so degrade instead of failing
			s.logger.Warn("clock lock unavailable, relying on store guard", zap.Error(err))
		} else if !acquired {
			return nil, pkgerrors.ErrConcurrentClock
		} else {
			defer func() {
				if err := s.locker.ReleaseClockLock(context.Background(), tenantID, staffID); err != nil {
					s.logger.Warn("clock lock release failed", zap.Error(err))
				}
			}()
		}
	}

	// 4. load history: trailing window plus the latest record overall
	now := s.now().UTC()
	history, snapshotLatest, err := s.loadHistory(ctx, tenantID, staffID, now)
	if err != nil {
		return nil, err
	}

	// 5. pure decision
	decision := policy.Evaluate(staffID, tenantID, action, now, rules, history)
	if decision.Outcome == policy.Rejected {
		return nil, &ClockRejectionError{Decision: decision}
	}

	// 6. persist
	record := &model.TimeRecord{
		TenantID:   tenantID,
		StaffID:    staffID,
		Action:     storageAction(action),
		RecordedAt: now,
	}
	if decision.HasDuration {
		d := decision.DurationHours
		record.DurationHours = &d
	}
	if decision.HasWeekly {
		w := decision.WeeklyHours
		record.WeeklyHours = &w
	}
	if err := s.repo.TimeRecord.Insert(ctx, record, snapshotLatest); err != nil {
		if errors.Is(err, pkgerrors.ErrConcurrentClock) {
			return nil, err
		}
		s.logger.Error("time record insert failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	// 7. best-effort notification; never blocks or fails the request
	if s.notifier != nil && ruleRow != nil && (ruleRow.NotifyEmail || ruleRow.NotifyCalendar) {
		staffCopy, recordCopy, ruleCopy := *staff, *record, *ruleRow
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.notifier.Notify(nctx, &staffCopy, &recordCopy, decision, &ruleCopy); err != nil {
				s.logger.Warn("clock notification failed",
					zap.String("staff_id", staffCopy.StaffID),
					zap.Error(err),
				)
			}
		}()
	}

	return buildClockResponse(record, decision), nil
}

// lockLocal takes the in-process mutex for the key and returns its release
// func.
func (s *clockService) lockLocal(tenantID, staffID string) func() {
	key := tenantID + ":" + staffID
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// loadRules resolves the tenant's shift rules, falling back to configured
// defaults when the tenant has no shift_rules row. The row itself is
// returned for its notification settings and may be nil.
func (s *clockService) loadRules(ctx context.Context, tenantID string) (policy.Rules, *model.ShiftRule, error) {
	row, err := s.repo.ShiftRule.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Rules{
				MinShiftHours:  s.cfg.Rules.MinShiftHours,
				MaxShiftHours:  s.cfg.Rules.MaxShiftHours,
				MaxWeeklyHours: s.cfg.Rules.MaxWeeklyHours,
			}, nil, nil
		}
		s.logger.Error("shift rules lookup failed", zap.Error(err))
		return policy.Rules{}, nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return policy.Rules{
		MinShiftHours:  row.MinShiftHours,
		MaxShiftHours:  row.MaxShiftHours,
		MaxWeeklyHours: row.MaxWeeklyHours,
	}, row, nil
}

// loadHistory returns the staff member's records covering the trailing
// window plus the most recent record overall, and the timestamp of that
// latest record for the insert guard.
func (s *clockService) loadHistory(ctx context.Context, tenantID, staffID string, now time.Time) ([]policy.Record, *time.Time, error) {
	since := now.Add(-policy.TrailingWindow)
	records, err := s.repo.TimeRecord.ListSince(ctx, tenantID, staffID, since)
	if err != nil {
		s.logger.Error("time record window query failed", zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	latest, err := s.repo.TimeRecord.FindLatest(ctx, tenantID, staffID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("latest time record query failed", zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	history := make([]policy.Record, 0, len(records)+1)
	for _, r := range records {
		history = append(history, toPolicyRecord(r))
	}
	var snapshotLatest *time.Time
	if latest != nil {
		ts := latest.RecordedAt
		snapshotLatest = &ts
		if ts.Before(since) {
			// latest record predates the window, include it for the
			// alternation check
			history = append(history, toPolicyRecord(*latest))
		}
	}
	return history, snapshotLatest, nil
}

// ── helpers ──

func toPolicyRecord(r model.TimeRecord) policy.Record {
	return policy.Record{
		StaffID:   r.StaffID,
		TenantID:  r.TenantID,
		Action:    wireAction(r.Action),
		Timestamp: r.RecordedAt,
	}
}

// storageAction maps the wire action to its storage form.
func storageAction(a policy.Action) string {
	if a == policy.ActionClockIn {
		return model.ActionClockIn
	}
	return model.ActionClockOut
}

// wireAction maps the storage action to its wire form.
func wireAction(a string) policy.Action {
	if a == model.ActionClockIn {
		return policy.ActionClockIn
	}
	return policy.ActionClockOut
}

func buildClockResponse(record *model.TimeRecord, decision policy.Decision) *dto.ClockResponse {
	resp := &dto.ClockResponse{Record: toRecordResponse(record)}
	if decision.HasDuration {
		d := decision.DurationHours
		resp.DurationHours = &d
	}
	if decision.HasWeekly {
		w := decision.WeeklyHours
		resp.WeeklyHours = &w
	}
	return resp
}

func toRecordResponse(record *model.TimeRecord) dto.TimeRecordResponse {
	return dto.TimeRecordResponse{
		ID:            record.RecordID,
		StaffID:       record.StaffID,
		TenantID:      record.TenantID,
		Action:        string(wireAction(record.Action)),
		RecordedAt:    record.RecordedAt.UTC().Format(time.RFC3339),
		DurationHours: record.DurationHours,
		WeeklyHours:   record.WeeklyHours,
	}
}
