package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"barberbook/backend/config"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/policy"
	"barberbook/backend/internal/repository"
	pkgerrors "barberbook/backend/pkg/errors"
)

// ── test helpers ──

type clockFixture struct {
	svc      *clockService
	records  *mockTimeRecordRepo
	rules    *mockShiftRuleRepo
	staff    *mockStaffRepo
	notifier *fakeNotifier
	now      time.Time
}

func setupClockFixture(t *testing.T) *clockFixture {
	t.Helper()

	staffRepo := newMockStaffRepo()
	staffRepo.staff["staff-1"] = &model.Staff{
		StaffID: "staff-1", TenantID: "tenant-1", Name: "Ada",
		Email: "ada@shop.test", Role: model.RoleStaff, IsActive: true,
	}
	staffRepo.staff["staff-2"] = &model.Staff{
		StaffID: "staff-2", TenantID: "tenant-1", Name: "Grace",
		Email: "grace@shop.test", Role: model.RoleStaff, IsActive: false,
	}

	ruleRepo := newMockShiftRuleRepo()
	ruleRepo.rules["tenant-1"] = &model.ShiftRule{
		TenantID: "tenant-1", MinShiftHours: 4, MaxShiftHours: 8, MaxWeeklyHours: 40,
		VersionedModel: model.VersionedModel{Version: 1},
	}

	recordRepo := newMockTimeRecordRepo()
	notifier := newFakeNotifier()

	repo := &repository.Repository{
		Tenant:     newMockTenantRepo(),
		Staff:      staffRepo,
		ShiftRule:  ruleRepo,
		TimeRecord: recordRepo,
	}

	cfg := &config.Config{
		Rules: config.RulesConfig{MinShiftHours: 1, MaxShiftHours: 12, MaxWeeklyHours: 48},
	}

	svc := NewClockService(cfg, repo, nil, notifier, zap.NewNop()).(*clockService)

	now, err := time.Parse(time.RFC3339, "2024-06-03T18:00:00Z")
	if err != nil {
		t.Fatalf("parse test time: %v", err)
	}
	svc.now = func() time.Time { return now }

	return &clockFixture{
		svc: svc, records: recordRepo, rules: ruleRepo,
		staff: staffRepo, notifier: notifier, now: now,
	}
}

func rejectionReason(t *testing.T, err error) policy.Reason {
	t.Helper()
	var rej *ClockRejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected ClockRejectionError, got: %v", err)
	}
	return rej.Decision.Reason
}

// ── clock-in ──

func TestClockService_ClockIn_Success(t *testing.T) {
	f := setupClockFixture(t)

	resp, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockIn)
	if err != nil {
		t.Fatalf("Clock should succeed: %v", err)
	}
	if resp.Record.Action != string(policy.ActionClockIn) {
		t.Errorf("expected clock-in record, got %s", resp.Record.Action)
	}
	if resp.DurationHours != nil || resp.WeeklyHours != nil {
		t.Error("clock-in response must not carry computed hours")
	}
	if n := f.records.count("tenant-1", "staff-1", model.ActionClockIn); n != 1 {
		t.Errorf("expected 1 persisted clock-in, got %d", n)
	}
}

func TestClockService_ClockIn_AlreadyClockedIn(t *testing.T) {
	f := setupClockFixture(t)
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-2 * time.Hour),
	})

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockIn)
	if reason := rejectionReason(t, err); reason != policy.ReasonAlreadyClockedIn {
		t.Errorf("expected ReasonAlreadyClockedIn, got %s", reason)
	}
	if n := f.records.count("tenant-1", "staff-1", model.ActionClockIn); n != 1 {
		t.Errorf("rejection must not persist a record, found %d clock-ins", n)
	}
}

// ── clock-out ──

func TestClockService_ClockOut_ComputesHours(t *testing.T) {
	f := setupClockFixture(t)
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-6 * time.Hour),
	})

	resp, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if err != nil {
		t.Fatalf("Clock should succeed: %v", err)
	}
	if resp.DurationHours == nil || *resp.DurationHours != 6 {
		t.Errorf("expected computed duration 6h, got %v", resp.DurationHours)
	}
	if resp.WeeklyHours == nil || *resp.WeeklyHours != 6 {
		t.Errorf("expected weekly total 6h, got %v", resp.WeeklyHours)
	}
	if resp.Record.DurationHours == nil || *resp.Record.DurationHours != 6 {
		t.Error("persisted record should snapshot the computed duration")
	}
}

func TestClockService_ClockOut_NoOpenShift(t *testing.T) {
	f := setupClockFixture(t)

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if reason := rejectionReason(t, err); reason != policy.ReasonNoOpenShift {
		t.Errorf("expected ReasonNoOpenShift, got %s", reason)
	}
}

func TestClockService_ClockOut_DurationTooShort(t *testing.T) {
	f := setupClockFixture(t)
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-30 * time.Minute),
	})

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if reason := rejectionReason(t, err); reason != policy.ReasonShiftDurationOutOfRange {
		t.Errorf("expected ReasonShiftDurationOutOfRange, got %s", reason)
	}
	if n := f.records.count("tenant-1", "staff-1", model.ActionClockOut); n != 0 {
		t.Errorf("rejection must not persist a record, found %d clock-outs", n)
	}
}

func TestClockService_InvalidAction(t *testing.T) {
	f := setupClockFixture(t)

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.Action("nap"))
	if reason := rejectionReason(t, err); reason != policy.ReasonInvalidAction {
		t.Errorf("expected ReasonInvalidAction, got %s", reason)
	}
}

// ── staff resolution ──

func TestClockService_StaffNotFound(t *testing.T) {
	f := setupClockFixture(t)

	_, err := f.svc.Clock(context.Background(), "tenant-1", "nobody", policy.ActionClockIn)
	if !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("expected ErrStaffNotFound, got: %v", err)
	}
}

func TestClockService_WrongTenantHidden(t *testing.T) {
	f := setupClockFixture(t)

	_, err := f.svc.Clock(context.Background(), "tenant-2", "staff-1", policy.ActionClockIn)
	if !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("cross-tenant access must look like a missing staff member, got: %v", err)
	}
}

func TestClockService_InactiveStaff(t *testing.T) {
	f := setupClockFixture(t)

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-2", policy.ActionClockIn)
	if !errors.Is(err, ErrStaffInactive) {
		t.Errorf("expected ErrStaffInactive, got: %v", err)
	}
}

// ── rules fallback ──

func TestClockService_RulesFallbackFromConfig(t *testing.T) {
	f := setupClockFixture(t)
	delete(f.rules.rules, "tenant-1")
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-13 * time.Hour),
	})

	// config fallback caps shifts at 12h, so a 13h shift is rejected even
	// though the tenant has no rules row
	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if reason := rejectionReason(t, err); reason != policy.ReasonShiftDurationOutOfRange {
		t.Errorf("expected ReasonShiftDurationOutOfRange under fallback rules, got %s", reason)
	}
}

// ── concurrency ──

func TestClockService_ConcurrentClockOut_OneWinner(t *testing.T) {
	f := setupClockFixture(t)
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-6 * time.Hour),
	})

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var rej *ClockRejectionError
		if !errors.As(err, &rej) && !errors.Is(err, pkgerrors.ErrConcurrentClock) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if accepted != 1 {
		t.Errorf("expected exactly 1 accepted clock-out, got %d", accepted)
	}
	if n := f.records.count("tenant-1", "staff-1", model.ActionClockOut); n != 1 {
		t.Errorf("expected exactly 1 persisted clock-out, got %d", n)
	}
}

func TestClockService_InsertGuardRejectsStaleSnapshot(t *testing.T) {
	f := setupClockFixture(t)
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-6 * time.Hour),
	})

	// a writer with an empty snapshot must lose against the existing record
	err := f.records.Insert(context.Background(), &model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockOut, RecordedAt: f.now,
	}, nil)
	if !errors.Is(err, pkgerrors.ErrConcurrentClock) {
		t.Errorf("expected ErrConcurrentClock for stale snapshot, got: %v", err)
	}
}

// ── notifications ──

func waitForNotification(t *testing.T, f *clockFixture) {
	t.Helper()
	select {
	case <-f.notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification dispatch")
	}
}

func TestClockService_NotifierCalledOnAccept(t *testing.T) {
	f := setupClockFixture(t)
	f.rules.rules["tenant-1"].NotifyEmail = true
	f.rules.rules["tenant-1"].AdminEmail = "owner@shop.test"
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-6 * time.Hour),
	})

	if _, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut); err != nil {
		t.Fatalf("Clock should succeed: %v", err)
	}
	waitForNotification(t, f)
	if f.notifier.callCount() != 1 {
		t.Errorf("expected 1 notification, got %d", f.notifier.callCount())
	}
}

func TestClockService_NotifierFailureDoesNotFailRequest(t *testing.T) {
	f := setupClockFixture(t)
	f.rules.rules["tenant-1"].NotifyEmail = true
	f.rules.rules["tenant-1"].AdminEmail = "owner@shop.test"
	f.notifier.fail = true
	f.records.seed(model.TimeRecord{
		TenantID: "tenant-1", StaffID: "staff-1",
		Action: model.ActionClockIn, RecordedAt: f.now.Add(-6 * time.Hour),
	})

	resp, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if err != nil {
		t.Fatalf("notification failure must not fail the request: %v", err)
	}
	if resp == nil || resp.Record.ID == "" {
		t.Error("accepted record should still be returned")
	}
	waitForNotification(t, f)
}

func TestClockService_NoNotificationOnRejection(t *testing.T) {
	f := setupClockFixture(t)
	f.rules.rules["tenant-1"].NotifyEmail = true
	f.rules.rules["tenant-1"].AdminEmail = "owner@shop.test"

	_, err := f.svc.Clock(context.Background(), "tenant-1", "staff-1", policy.ActionClockOut)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if f.notifier.callCount() != 0 {
		t.Errorf("rejection must not notify, got %d calls", f.notifier.callCount())
	}
}
