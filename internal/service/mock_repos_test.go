package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"barberbook/backend/internal/model"
	"barberbook/backend/internal/policy"
	pkgerrors "barberbook/backend/pkg/errors"
)

// ── mock TenantRepository ──

type mockTenantRepo struct {
	tenants map[string]*model.Tenant
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[string]*model.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	if tenant.TenantID == "" {
		tenant.TenantID = "tenant-" + tenant.Name
	}
	m.tenants[tenant.TenantID] = tenant
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── mock StaffRepository ──

type mockStaffRepo struct {
	staff map[string]*model.Staff
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*model.Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	if staff.StaffID == "" {
		staff.StaffID = fmt.Sprintf("staff-%d", len(m.staff)+1)
	}
	if staff.Version == 0 {
		staff.Version = 1
	}
	m.staff[staff.StaffID] = staff
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*model.Staff, error) {
	if s, ok := m.staff[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) GetByEmail(_ context.Context, tenantID, email string) (*model.Staff, error) {
	for _, s := range m.staff {
		if s.TenantID == tenantID && s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffRepo) List(_ context.Context, tenantID string, offset, limit int) ([]model.Staff, int64, error) {
	var result []model.Staff
	for _, s := range m.staff {
		if s.TenantID == tenantID {
			result = append(result, *s)
		}
	}
	total := int64(len(result))
	if offset > len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockStaffRepo) Update(_ context.Context, staff *model.Staff) error {
	existing, ok := m.staff[staff.StaffID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != staff.Version {
		return pkgerrors.ErrOptimisticLock
	}
	staff.Version++
	copied := *staff
	m.staff[staff.StaffID] = &copied
	return nil
}

func (m *mockStaffRepo) Deactivate(_ context.Context, id string, _ string) error {
	if s, ok := m.staff[id]; ok {
		s.IsActive = false
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── mock ShiftRuleRepository ──

type mockShiftRuleRepo struct {
	rules map[string]*model.ShiftRule
}

func newMockShiftRuleRepo() *mockShiftRuleRepo {
	return &mockShiftRuleRepo{rules: make(map[string]*model.ShiftRule)}
}

func (m *mockShiftRuleRepo) GetByTenant(_ context.Context, tenantID string) (*model.ShiftRule, error) {
	if r, ok := m.rules[tenantID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRuleRepo) Upsert(_ context.Context, rule *model.ShiftRule) error {
	existing, ok := m.rules[rule.TenantID]
	if ok && existing.Version != rule.Version {
		return pkgerrors.ErrOptimisticLock
	}
	rule.Version++
	copied := *rule
	m.rules[rule.TenantID] = &copied
	return nil
}

// ── mock TimeRecordRepository ──

// mockTimeRecordRepo is safe for concurrent use so the double-clock race
// test can hammer it from multiple goroutines.
type mockTimeRecordRepo struct {
	mu      sync.Mutex
	records []model.TimeRecord
}

func newMockTimeRecordRepo() *mockTimeRecordRepo {
	return &mockTimeRecordRepo{}
}

func (m *mockTimeRecordRepo) seed(record model.TimeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.RecordID = fmt.Sprintf("rec-%d", len(m.records)+1)
	m.records = append(m.records, record)
}

func (m *mockTimeRecordRepo) latestLocked(tenantID, staffID string) *model.TimeRecord {
	var latest *model.TimeRecord
	for i := range m.records {
		r := &m.records[i]
		if r.TenantID != tenantID || r.StaffID != staffID {
			continue
		}
		if latest == nil || r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return latest
}

func (m *mockTimeRecordRepo) FindLatest(_ context.Context, tenantID, staffID string) (*model.TimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := m.latestLocked(tenantID, staffID)
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *mockTimeRecordRepo) ListSince(_ context.Context, tenantID, staffID string, since time.Time) ([]model.TimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimeRecord
	for _, r := range m.records {
		if r.TenantID == tenantID && r.StaffID == staffID && !r.RecordedAt.Before(since) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockTimeRecordRepo) ListRange(_ context.Context, tenantID, staffID string, from, to time.Time) ([]model.TimeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TimeRecord
	for _, r := range m.records {
		if r.TenantID != tenantID {
			continue
		}
		if staffID != "" && r.StaffID != staffID {
			continue
		}
		if r.RecordedAt.Before(from) || r.RecordedAt.After(to) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockTimeRecordRepo) Insert(_ context.Context, record *model.TimeRecord, snapshotLatest *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest := m.latestLocked(record.TenantID, record.StaffID)
	switch {
	case latest == nil:
		if snapshotLatest != nil {
			return pkgerrors.ErrConcurrentClock
		}
	default:
		if snapshotLatest == nil || latest.RecordedAt.After(*snapshotLatest) {
			return pkgerrors.ErrConcurrentClock
		}
	}

	record.RecordID = fmt.Sprintf("rec-%d", len(m.records)+1)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockTimeRecordRepo) count(tenantID, staffID, action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.TenantID == tenantID && r.StaffID == staffID && r.Action == action {
			n++
		}
	}
	return n
}

// ── fake Notifier ──

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // staff IDs notified
	fail  bool
	done  chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 16)}
}

func (f *fakeNotifier) Notify(_ context.Context, staff *model.Staff, _ *model.TimeRecord, _ policy.Decision, _ *model.ShiftRule) error {
	f.mu.Lock()
	f.calls = append(f.calls, staff.StaffID)
	fail := f.fail
	f.mu.Unlock()
	f.done <- struct{}{}
	if fail {
		return fmt.Errorf("smtp relay unreachable")
	}
	return nil
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
