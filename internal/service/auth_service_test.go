package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 2
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}
	return NewAuthService(cfg, repository.NewAdminRepository(db)), db
}

func createTestAdmin(t *testing.T, svc *AuthService, db *gorm.DB, username, password string, disabled bool) *models.Admin {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Disabled:     disabled,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginIssuesTokenAndTracksLastLogin(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	createTestAdmin(t, svc, db, "ops", "Sup3r-secret", false)

	admin, token, expiresAt, err := svc.Login("ops", "Sup3r-secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be issued")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp to be set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	createTestAdmin(t, svc, db, "ops", "Sup3r-secret", false)

	if _, _, _, err := svc.Login("ops", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "Sup3r-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown admin, got %v", err)
	}
}

func TestLoginRejectsDisabledAdmin(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	createTestAdmin(t, svc, db, "ops", "Sup3r-secret", true)

	if _, _, _, err := svc.Login("ops", "Sup3r-secret"); !errors.Is(err, ErrAdminDisabled) {
		t.Fatalf("expected ErrAdminDisabled, got %v", err)
	}
	// 密码错误时不暴露禁用状态
	if _, _, _, err := svc.Login("ops", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePasswordRevokesExistingTokens(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	admin := createTestAdmin(t, svc, db, "ops", "Sup3r-secret", false)

	if err := svc.ChangePassword(admin.ID, "Sup3r-secret", "N3xt-secret"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var updated models.Admin
	if err := db.First(&updated, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if updated.TokenVersion != admin.TokenVersion+1 {
		t.Fatalf("expected token version bump, got %d", updated.TokenVersion)
	}
	if updated.TokenInvalidBefore == nil {
		t.Fatalf("expected token invalid before to be set")
	}
	if err := svc.VerifyPassword(updated.PasswordHash, "N3xt-secret"); err != nil {
		t.Fatalf("new password should verify: %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "Sup3r-secret", "Other-secret"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword with stale old password, got %v", err)
	}
}

func TestChangePasswordEnforcesPolicy(t *testing.T) {
	svc, db := newAuthServiceForTest(t)
	admin := createTestAdmin(t, svc, db, "ops", "Sup3r-secret", false)

	if err := svc.ChangePassword(admin.ID, "Sup3r-secret", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}
