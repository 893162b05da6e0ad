package models

import (
	"time"

	"gorm.io/gorm"
)

// Artifact 生成站点表
// 说明：站点由外部生成流水线创建；本引擎维护病毒分、分享计数与精选状态。
// auto_featured 单调：一旦为 true 永不回退，featured_at 只赋值一次。
type Artifact struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                           // 主键
	PublicID           string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`         // 对外站点标识（UUID）
	OwnerAccountID     uint           `gorm:"not null;index" json:"owner_account_id"`                         // 所属账户ID
	Title              string         `gorm:"type:varchar(200);not null;default:''" json:"title"`             // 站点标题
	Slug               string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`             // 唯一短标识
	TagsJSON           StringArray    `gorm:"type:json" json:"tags"`                                          // 标签
	Status             string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`  // 站点状态
	ViralScore         Score          `gorm:"type:decimal(20,2);not null;default:0;index" json:"viral_score"` // 病毒分（每次完整重算）
	ExternalShareCount int64          `gorm:"not null;default:0" json:"external_share_count"`                 // 外部分享计数（单调递增）
	Pageviews          int64          `gorm:"not null;default:0" json:"pageviews"`                            // 浏览量
	Likes              int64          `gorm:"not null;default:0" json:"likes"`                                // 点赞数
	Comments           int64          `gorm:"not null;default:0" json:"comments"`                             // 评论数
	AutoFeatured       bool           `gorm:"not null;default:false;index" json:"auto_featured"`              // 是否已自动精选（单调）
	FeaturedAt         *time.Time     `gorm:"index" json:"featured_at,omitempty"`                             // 精选时间（仅赋值一次）
	ShowcaseEligible   bool           `gorm:"not null;default:true" json:"showcase_eligible"`                 // 是否允许进入展示位
	SuspendedAt        *time.Time     `json:"suspended_at,omitempty"`                                         // 下架时间
	SuspendReason      string         `gorm:"type:varchar(255);not null;default:''" json:"suspend_reason"`    // 下架原因
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间（时间衰减基准）
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Owner Account `gorm:"foreignKey:OwnerAccountID" json:"owner,omitempty"` // 所属账户
}

// TableName 指定表名
func (Artifact) TableName() string {
	return "artifacts"
}
