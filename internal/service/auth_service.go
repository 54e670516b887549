package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"barberbook/backend/config"
	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/repository"
	"barberbook/backend/pkg/jwt"
	"barberbook/backend/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidRefresh     = errors.New("refresh token is invalid")
)

// AuthService handles staff authentication.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	// Logout blacklists the presented access token until it expires.
	Logout(ctx context.Context, claims *jwt.Claims) error
	// Me returns the authenticated staff member.
	Me(ctx context.Context, staffID string) (*dto.StaffResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client // nil: logout becomes a no-op
	logger *zap.Logger
}

// NewAuthService creates an AuthService instance.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	staff, err := s.repo.Staff.GetByEmail(ctx, req.TenantID, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(staff)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("blacklist check failed, accepting token", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefresh
		}
	}

	staff, err := s.repo.Staff.GetByID(ctx, claims.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrInvalidRefresh
	}

	return s.issueTokens(staff)
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil {
		return nil // blacklist unavailable, token simply ages out
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.rdb.BlacklistToken(ctx, claims.ID, ttl)
}

func (s *authService) Me(ctx context.Context, staffID string) (*dto.StaffResponse, error) {
	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, err
	}
	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *authService) issueTokens(staff *model.Staff) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(staff.StaffID, staff.TenantID, staff.Role)
	if err != nil {
		s.logger.Error("access token generation failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(staff.StaffID, staff.TenantID, staff.Role)
	if err != nil {
		s.logger.Error("refresh token generation failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		Staff:        toStaffResponse(staff),
	}, nil
}

func toStaffResponse(staff *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       staff.StaffID,
		TenantID: staff.TenantID,
		Name:     staff.Name,
		Email:    staff.Email,
		Role:     staff.Role,
		IsActive: staff.IsActive,
	}
}
