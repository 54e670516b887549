package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"barberbook/backend/config"
	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/model"
	"barberbook/backend/internal/repository"
	"barberbook/backend/pkg/jwt"
)

func setupAuthService(t *testing.T) (AuthService, *mockStaffRepo, *jwt.Manager) {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-at-least-16-chars",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	staffRepo := newMockStaffRepo()
	staffRepo.staff["staff-1"] = &model.Staff{
		StaffID: "staff-1", TenantID: "tenant-1", Name: "Ada",
		Email: "ada@shop.test", PasswordHash: string(hash),
		Role: model.RoleStaff, IsActive: true,
	}

	repo := &repository.Repository{
		Tenant:     newMockTenantRepo(),
		Staff:      staffRepo,
		ShiftRule:  newMockShiftRuleRepo(),
		TimeRecord: newMockTimeRecordRepo(),
	}
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, staffRepo, jwtMgr
}

func TestAuthService_Login(t *testing.T) {
	svc, _, jwtMgr := setupAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if resp.Staff.ID != "staff-1" || resp.Staff.TenantID != "tenant-1" {
		t.Errorf("unexpected staff in response: %+v", resp.Staff)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued access token should parse: %v", err)
	}
	if claims.TokenType != "access" || claims.TenantID != "tenant-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_WrongTenant(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-2", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_InactiveStaff(t *testing.T) {
	svc, staffRepo, _ := setupAuthService(t)
	staffRepo.staff["staff-1"].IsActive = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh should succeed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected a fresh access token")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("access token must not refresh, got: %v", err)
	}
}

func TestAuthService_Refresh_DeactivatedStaff(t *testing.T) {
	svc, staffRepo, _ := setupAuthService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		TenantID: "tenant-1", Email: "ada@shop.test", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}

	staffRepo.staff["staff-1"].IsActive = false
	_, err = svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("deactivated staff must not refresh, got: %v", err)
	}
}

func TestAuthService_Logout_NoRedis(t *testing.T) {
	svc, _, jwtMgr := setupAuthService(t)

	token, err := jwtMgr.GenerateAccessToken("staff-1", "tenant-1", model.RoleStaff)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Errorf("Logout without Redis should be a no-op, got: %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	resp, err := svc.Me(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("Me should succeed: %v", err)
	}
	if resp.Email != "ada@shop.test" {
		t.Errorf("unexpected staff: %+v", resp)
	}

	if _, err := svc.Me(context.Background(), "nobody"); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("expected ErrStaffNotFound, got: %v", err)
	}
}
