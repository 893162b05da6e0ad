package models

import "time"

// ShareEvent 外部分享事件表
// 说明：仅追加的审计流水，创建后永不修改、永不删除。
type ShareEvent struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                 // 主键
	ArtifactID     uint      `gorm:"not null;index" json:"artifact_id"`                    // 站点ID
	ActorAccountID *uint     `gorm:"index" json:"actor_account_id,omitempty"`              // 分享发起账户ID（可为空）
	Platform       string    `gorm:"type:varchar(20);not null;index" json:"platform"`      // 分享平台
	PlatformWeight Score     `gorm:"type:decimal(10,2);not null;default:0" json:"platform_weight"` // 入账时解析的平台权重
	BoostWeight    Score     `gorm:"type:decimal(10,2);not null;default:1" json:"boost_weight"`    // 单事件加成权重
	TargetURL      string    `gorm:"type:varchar(500);not null;default:''" json:"target_url"`      // 指向链接
	RequestID      string    `gorm:"type:varchar(64);index" json:"request_id"`             // 请求追踪ID
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                              // 记录时间

	Artifact     Artifact `gorm:"foreignKey:ArtifactID" json:"artifact,omitempty"`          // 站点
	ActorAccount *Account `gorm:"foreignKey:ActorAccountID" json:"actor_account,omitempty"` // 分享发起账户
}

// TableName 指定表名
func (ShareEvent) TableName() string {
	return "share_events"
}
