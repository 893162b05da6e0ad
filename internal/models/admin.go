package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 运营管理员账号
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`         // 登录账号
	DisplayName        string         `gorm:"default:''" json:"display_name"`               // 对外显示名，允许为空
	PasswordHash       string         `gorm:"not null" json:"-"`                            // bcrypt 哈希
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // 自增后旧令牌全部失效
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 早于该时刻签发的令牌一律拒绝
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 超管跳过 RBAC 校验
	Disabled           bool           `gorm:"not null;default:false" json:"disabled"`       // 禁用后无法登录，存量令牌也被拒
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
