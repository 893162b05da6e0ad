package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral 推荐关系表
// 说明：同一推荐人对同一被推荐邮箱唯一；状态机单向
// （pending → activated → converted，pending 可过期，converted 可流失）。
type Referral struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                         // 主键
	ReferrerAccountID uint           `gorm:"not null;index;index:idx_referral_pair,unique" json:"referrer_account_id"`     // 推荐人账户ID
	ReferredEmail     string         `gorm:"type:varchar(255);not null;index:idx_referral_pair,unique" json:"referred_email"` // 被推荐邮箱
	ReferredAccountID *uint          `gorm:"index" json:"referred_account_id,omitempty"`                                   // 被推荐账户ID（激活后回填）
	ReferralCode      string         `gorm:"type:varchar(32);not null;index" json:"referral_code"`                         // 使用的推荐码
	Status            string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`              // 推荐状态
	ConversionTier    string         `gorm:"type:varchar(20);not null;default:''" json:"conversion_tier"`                  // 转化时订阅等级
	ConversionValue   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"conversion_value"`                // 转化时订阅金额
	ActivatedAt       *time.Time     `gorm:"index" json:"activated_at,omitempty"`                                          // 激活时间（佣金计月起点）
	ConvertedAt       *time.Time     `gorm:"index" json:"converted_at,omitempty"`                                          // 转化时间
	ExpiredAt         *time.Time     `json:"expired_at,omitempty"`                                                         // 过期时间
	ChurnedAt         *time.Time     `json:"churned_at,omitempty"`                                                         // 流失时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                      // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                               // 软删除时间

	Referrer        Account  `gorm:"foreignKey:ReferrerAccountID" json:"referrer,omitempty"`         // 推荐人
	ReferredAccount *Account `gorm:"foreignKey:ReferredAccountID" json:"referred_account,omitempty"` // 被推荐账户
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}
