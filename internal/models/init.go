package models

import (
	"strings"

	"github.com/sitewave-growth/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员，已有管理员时只校正根账号的超管位
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)
	if count > 0 {
		ensureRootAdminSuper()
		return nil
	}
	return createDefaultAdmin(username, password)
}

// ensureRootAdminSuper 根账号的超管位可能被历史数据改掉，启动时校正回来
func ensureRootAdminSuper() {
	if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("is_super", true).Error; err != nil {
		logger.Warnw("ensure_default_admin_super_failed", "error", err)
	}
}

func createDefaultAdmin(username, password string) error {
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// 只有根账号名默认拿超管位
	isRoot := strings.EqualFold(strings.TrimSpace(username), "admin")
	admin := Admin{Username: username, PasswordHash: string(hash), IsSuper: isRoot}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logDefaultAdminCreated(username, password)
	return nil
}

func logDefaultAdminCreated(username, password string) {
	if password != "admin123" {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
		return
	}
	logger.Warnw("default_admin_created_with_default_password", "username", username, "password", password)
	logger.Warnw("default_admin_password_change_required", "username", username)
}
