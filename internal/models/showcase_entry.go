package models

import "time"

// ShowcaseEntry 展示位条目表
// 说明：派生表，仅 featured/viral 站点持有条目；由自动精选触发器创建，
// 重排任务整体重建（删除后重新插入），不做原地修改。
type ShowcaseEntry struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                            // 主键
	ArtifactID         uint      `gorm:"not null;uniqueIndex" json:"artifact_id"`                         // 站点ID
	AccountID          uint      `gorm:"not null;index" json:"account_id"`                                // 所属账户ID
	ScoreSnapshot      Score     `gorm:"type:decimal(20,2);not null;default:0" json:"score_snapshot"`     // 入位时病毒分快照
	ShareCountSnapshot int64     `gorm:"not null;default:0" json:"share_count_snapshot"`                  // 入位时分享计数快照
	BoostTier          string    `gorm:"type:varchar(20);not null;default:'bronze';index" json:"boost_tier"` // 加成档位
	DisplayOrder       int       `gorm:"not null;default:0;index" json:"display_order"`                   // 展示顺序（重排任务写入）
	FeaturedAt         time.Time `gorm:"not null;index" json:"featured_at"`                               // 精选时间（同分并列按此升序）
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt          time.Time `json:"updated_at"`                                                      // 更新时间

	Artifact Artifact `gorm:"foreignKey:ArtifactID" json:"artifact,omitempty"` // 站点
	Account  Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`   // 所属账户
}

// TableName 指定表名
func (ShowcaseEntry) TableName() string {
	return "showcase_entries"
}
