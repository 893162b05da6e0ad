package service

import (
	"context"
	"errors"
	"time"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims 管理端会话令牌声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AuthService 管理端认证：登录、令牌签发与密码策略
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// GenerateJWT 为管理员签发 HS256 会话令牌
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseJWT 解析并校验会话令牌
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.JWT.SecretKey), nil }
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("token 无效")
	}
	return claims, nil
}

// Login 管理员登录
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	fail := func(err error) (*models.Admin, string, time.Time, error) {
		return nil, "", time.Time{}, err
	}

	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return fail(err)
	}
	// 未知账号与密码错误返回同一个错误，不暴露账号是否存在
	if admin == nil {
		return fail(ErrInvalidCredentials)
	}
	if s.VerifyPassword(admin.PasswordHash, password) != nil {
		return fail(ErrInvalidCredentials)
	}
	// 禁用状态只有持有正确密码才可见
	if admin.Disabled {
		return fail(ErrAdminDisabled)
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return fail(err)
	}

	loginAt := time.Now()
	admin.LastLoginAt = &loginAt
	if err := s.adminRepo.Update(admin); err != nil {
		return fail(err)
	}
	s.refreshAuthState(admin)

	return admin, token, expiresAt, nil
}

// ChangePassword 修改管理员密码并吊销存量会话
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}

	if s.VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	admin.PasswordHash = hashed
	RevokeAdminSessions(admin)
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	s.refreshAuthState(admin)
	return nil
}

// RevokeAdminSessions 吊销管理员全部存量令牌，持久化由调用方负责
func RevokeAdminSessions(admin *models.Admin) {
	if admin == nil {
		return
	}
	revokedAt := time.Now()
	admin.TokenInvalidBefore = &revokedAt
	admin.TokenVersion++
}

func (s *AuthService) refreshAuthState(admin *models.Admin) {
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
}
