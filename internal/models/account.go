package models

import (
	"time"

	"gorm.io/gorm"
)

// Account 平台账户表
// 说明：账户由外部用户体系创建，本引擎只维护增长与佣金侧字段；
// 累计分享计数单调不减，账户只软禁用，从不硬删除。
type Account struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                            // 主键
	PublicID           string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`          // 平台侧账户标识（UUID）
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                               // 邮箱
	DisplayName        string         `gorm:"default:''" json:"display_name"`                                  // 昵称
	SubscriptionTier   string         `gorm:"type:varchar(20);not null;default:'free';index" json:"tier"`      // 订阅等级
	Status             string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`  // 账户状态
	ViralScore         Score          `gorm:"type:decimal(20,2);not null;default:0" json:"viral_score"`        // 累计病毒分
	SharesInitiated    int64          `gorm:"not null;default:0" json:"shares_initiated"`                      // 累计发起分享数
	SharesReceived     int64          `gorm:"not null;default:0" json:"shares_received"`                       // 名下站点累计被分享数
	CommissionStartAt  *time.Time     `gorm:"index" json:"commission_start_at,omitempty"`                      // 首个推荐激活时间（佣金关系起点）
	LifetimeCommission Money          `gorm:"type:decimal(20,2);not null;default:0" json:"lifetime_commission"` // 累计佣金
	DisabledAt         *time.Time     `json:"disabled_at,omitempty"`                                           // 禁用时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
