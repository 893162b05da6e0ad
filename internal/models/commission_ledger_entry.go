package models

import "time"

// CommissionLedgerEntry 佣金台账表
// 说明：财务流水，同一推荐关系在同一账期至多一条（数据库唯一索引兜底）；
// 创建后仅允许结算状态流转，永不删除，故不维护 UpdatedAt。
type CommissionLedgerEntry struct {
	ID                   uint       `gorm:"primarykey" json:"id"`                                                             // 主键
	ReferralID           uint       `gorm:"not null;index;index:idx_commission_ledger_unique,unique" json:"referral_id"`      // 推荐关系ID
	BeneficiaryAccountID uint       `gorm:"not null;index" json:"beneficiary_account_id"`                                     // 受益账户ID（推荐人）
	PeriodStart          time.Time  `gorm:"type:date;not null;index:idx_commission_ledger_unique,unique" json:"period_start"` // 账期开始
	PeriodEnd            time.Time  `gorm:"type:date;not null;index:idx_commission_ledger_unique,unique" json:"period_end"`   // 账期结束
	SubscriptionAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subscription_amount"`                 // 被推荐账户订阅金额
	CommissionRate       Money      `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"`                      // 计算时适用费率
	RelationshipMonths   int        `gorm:"not null;default:0" json:"relationship_months"`                                    // 计算时的关系月数
	CommissionAmount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`                   // 佣金金额
	Status               string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`                  // 结算状态
	ConfirmAt            *time.Time `gorm:"index" json:"confirm_at,omitempty"`                                                // 确认期到期时间
	AvailableAt          *time.Time `gorm:"index" json:"available_at,omitempty"`                                              // 转可结算时间
	PaidAt               *time.Time `json:"paid_at,omitempty"`                                                                // 结算时间
	RejectReason         string     `gorm:"type:varchar(255);not null;default:''" json:"reject_reason"`                       // 驳回原因
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`                                                          // 创建时间

	Referral    Referral `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`               // 推荐关系
	Beneficiary Account  `gorm:"foreignKey:BeneficiaryAccountID" json:"beneficiary,omitempty"` // 受益账户
}

// TableName 指定表名
func (CommissionLedgerEntry) TableName() string {
	return "commission_ledger_entries"
}
