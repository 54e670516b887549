package service

import (
	"go.uber.org/zap"

	"barberbook/backend/config"
	"barberbook/backend/internal/repository"
	"barberbook/backend/pkg/jwt"
	"barberbook/backend/pkg/redis"
)

// Service aggregates all services.
type Service struct {
	Auth      AuthService
	Clock     ClockService
	Timesheet TimesheetService
	Staff     StaffService
	ShiftRule ShiftRuleService
	Export    ExportService
}

// NewService builds the service aggregate.
// rdb may be nil; Redis-backed features degrade gracefully.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notifier := NewMailNotifier(NewSMTPMailer(&cfg.Mail), logger)

	var locker ClockLocker
	if rdb != nil {
		locker = rdb
	}

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Clock:     NewClockService(cfg, repo, locker, notifier, logger),
		Timesheet: NewTimesheetService(repo, logger),
		Staff:     NewStaffService(repo, logger),
		ShiftRule: NewShiftRuleService(cfg, repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
