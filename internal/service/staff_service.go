package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/repository"
)

var (
	ErrEmailTaken = errors.New("email is already registered for this tenant")
)

// StaffService manages staff accounts.
type StaffService interface {
	Create(ctx context.Context, tenantID string, req *dto.CreateStaffRequest, callerID string) (*dto.StaffResponse, error)
	Get(ctx context.Context, tenantID, staffID string) (*dto.StaffResponse, error)
	List(ctx context.Context, tenantID string, page *dto.PaginationRequest) ([]dto.StaffResponse, int64, error)
	Update(ctx context.Context, tenantID, staffID string, req *dto.UpdateStaffRequest, callerID string) (*dto.StaffResponse, error)
	Deactivate(ctx context.Context, tenantID, staffID string, callerID string) error
}

type staffService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStaffService creates a StaffService instance.
func NewStaffService(repo *repository.Repository, logger *zap.Logger) StaffService {
	return &staffService{repo: repo, logger: logger}
}

func (s *staffService) Create(ctx context.Context, tenantID string, req *dto.CreateStaffRequest, callerID string) (*dto.StaffResponse, error) {
	if _, err := s.repo.Staff.GetByEmail(ctx, tenantID, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("staff email lookup failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}

	staff := &model.Staff{
		TenantID:     tenantID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	staff.CreatedBy = &callerID
	staff.UpdatedBy = &callerID

	if err := s.repo.Staff.Create(ctx, staff); err != nil {
		s.logger.Error("staff create failed", zap.Error(err))
		return nil, err
	}

	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *staffService) Get(ctx context.Context, tenantID, staffID string) (*dto.StaffResponse, error) {
	staff, err := s.getScoped(ctx, tenantID, staffID)
	if err != nil {
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *staffService) List(ctx context.Context, tenantID string, page *dto.PaginationRequest) ([]dto.StaffResponse, int64, error) {
	staff, total, err := s.repo.Staff.List(ctx, tenantID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("staff list failed", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.StaffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, toStaffResponse(&staff[i]))
	}
	return out, total, nil
}

func (s *staffService) Update(ctx context.Context, tenantID, staffID string, req *dto.UpdateStaffRequest, callerID string) (*dto.StaffResponse, error) {
	staff, err := s.getScoped(ctx, tenantID, staffID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	staff.UpdatedBy = &callerID

	if err := s.repo.Staff.Update(ctx, staff); err != nil {
		s.logger.Error("staff update failed", zap.Error(err))
		return nil, err
	}

	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *staffService) Deactivate(ctx context.Context, tenantID, staffID string, callerID string) error {
	if _, err := s.getScoped(ctx, tenantID, staffID); err != nil {
		return err
	}
	return s.repo.Staff.Deactivate(ctx, staffID, callerID)
}

// getScoped loads a staff member and hides records of other tenants behind
// ErrStaffNotFound.
func (s *staffService) getScoped(ctx context.Context, tenantID, staffID string) (*model.Staff, error) {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, err
	}
	if staff.TenantID != tenantID {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}
