package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"barberbook/backend/config"
	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/repository"
)

var (
	ErrRuleBoundsInvalid = errors.New("min_shift_hours must not exceed max_shift_hours")
)

// ShiftRuleService manages the per-tenant clock policy.
type ShiftRuleService interface {
	// Get returns the tenant's rules, falling back to configured defaults
	// when the tenant has no row yet.
	Get(ctx context.Context, tenantID string) (*dto.ShiftRuleResponse, error)
	// Update patches the tenant's rules, creating the row on first write.
	Update(ctx context.Context, tenantID string, req *dto.UpdateShiftRuleRequest, callerID string) (*dto.ShiftRuleResponse, error)
}

type shiftRuleService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftRuleService creates a ShiftRuleService instance.
func NewShiftRuleService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ShiftRuleService {
	return &shiftRuleService{cfg: cfg, repo: repo, logger: logger}
}

func (s *shiftRuleService) Get(ctx context.Context, tenantID string) (*dto.ShiftRuleResponse, error) {
	rule, err := s.repo.ShiftRule.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultResponse(tenantID), nil
		}
		s.logger.Error("shift rules lookup failed", zap.Error(err))
		return nil, err
	}
	return toRuleResponse(rule, false), nil
}

func (s *shiftRuleService) Update(ctx context.Context, tenantID string, req *dto.UpdateShiftRuleRequest, callerID string) (*dto.ShiftRuleResponse, error) {
	rule, err := s.repo.ShiftRule.GetByTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("shift rules lookup failed", zap.Error(err))
			return nil, err
		}
		// first write: start from the configured defaults
		rule = &model.ShiftRule{
			TenantID:       tenantID,
			MinShiftHours:  s.cfg.Rules.MinShiftHours,
			MaxShiftHours:  s.cfg.Rules.MaxShiftHours,
			MaxWeeklyHours: s.cfg.Rules.MaxWeeklyHours,
		}
	}

	if req.MinShiftHours != nil {
		rule.MinShiftHours = *req.MinShiftHours
	}
	if req.MaxShiftHours != nil {
		rule.MaxShiftHours = *req.MaxShiftHours
	}
	if req.MaxWeeklyHours != nil {
		rule.MaxWeeklyHours = *req.MaxWeeklyHours
	}
	if req.NotifyEmail != nil {
		rule.NotifyEmail = *req.NotifyEmail
	}
	if req.NotifyCalendar != nil {
		rule.NotifyCalendar = *req.NotifyCalendar
	}
	if req.AdminEmail != nil {
		rule.AdminEmail = *req.AdminEmail
	}
	rule.UpdatedBy = &callerID

	if rule.MinShiftHours > rule.MaxShiftHours {
		return nil, ErrRuleBoundsInvalid
	}

	if err := s.repo.ShiftRule.Upsert(ctx, rule); err != nil {
		s.logger.Error("shift rules upsert failed", zap.Error(err))
		return nil, err
	}

	return toRuleResponse(rule, false), nil
}

func (s *shiftRuleService) defaultResponse(tenantID string) *dto.ShiftRuleResponse {
	return &dto.ShiftRuleResponse{
		TenantID:       tenantID,
		MinShiftHours:  s.cfg.Rules.MinShiftHours,
		MaxShiftHours:  s.cfg.Rules.MaxShiftHours,
		MaxWeeklyHours: s.cfg.Rules.MaxWeeklyHours,
		IsDefault:      true,
	}
}

func toRuleResponse(rule *model.ShiftRule, isDefault bool) *dto.ShiftRuleResponse {
	return &dto.ShiftRuleResponse{
		TenantID:       rule.TenantID,
		MinShiftHours:  rule.MinShiftHours,
		MaxShiftHours:  rule.MaxShiftHours,
		MaxWeeklyHours: rule.MaxWeeklyHours,
		NotifyEmail:    rule.NotifyEmail,
		NotifyCalendar: rule.NotifyCalendar,
		AdminEmail:     rule.AdminEmail,
		IsDefault:      isDefault,
	}
}
