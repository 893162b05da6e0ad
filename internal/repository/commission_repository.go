package repository

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金台账数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	Create(entry *models.CommissionLedgerEntry) error
	GetByID(id uint) (*models.CommissionLedgerEntry, error)
	GetByIDForUpdate(id uint) (*models.CommissionLedgerEntry, error)
	GetByReferralAndPeriod(referralID uint, periodStart time.Time) (*models.CommissionLedgerEntry, error)
	Update(entry *models.CommissionLedgerEntry) error
	List(filter CommissionListFilter) ([]models.CommissionLedgerEntry, int64, error)
	ConfirmDueEntries(now time.Time) (int64, error)
	SumAmountByBeneficiary(beneficiaryAccountID uint, statuses []string) (models.Money, error)
}

// GormCommissionRepository GORM 佣金台账仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金台账仓库
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// Transaction 在事务中执行
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Create 写入佣金台账条目
func (r *GormCommissionRepository) Create(entry *models.CommissionLedgerEntry) error {
	return r.db.Create(entry).Error
}

// GetByID 根据 ID 获取台账条目
func (r *GormCommissionRepository) GetByID(id uint) (*models.CommissionLedgerEntry, error) {
	if id == 0 {
		return nil, nil
	}
	var entry models.CommissionLedgerEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetByIDForUpdate 按 ID 加锁获取台账条目（结算状态流转使用）
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.CommissionLedgerEntry, error) {
	if id == 0 {
		return nil, nil
	}
	var entry models.CommissionLedgerEntry
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// GetByReferralAndPeriod 根据推荐关系与账期起点获取台账条目
func (r *GormCommissionRepository) GetByReferralAndPeriod(referralID uint, periodStart time.Time) (*models.CommissionLedgerEntry, error) {
	if referralID == 0 {
		return nil, nil
	}
	var entry models.CommissionLedgerEntry
	err := r.db.Where("referral_id = ? AND period_start = ?", referralID, periodStart).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Update 更新台账条目（仅用于支付状态流转）
func (r *GormCommissionRepository) Update(entry *models.CommissionLedgerEntry) error {
	return r.db.Save(entry).Error
}

// List 查询台账条目列表
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.CommissionLedgerEntry, int64, error) {
	query := r.db.Model(&models.CommissionLedgerEntry{})

	if filter.ReferralID > 0 {
		query = query.Where("referral_id = ?", filter.ReferralID)
	}
	if filter.BeneficiaryAccountID > 0 {
		query = query.Where("beneficiary_account_id = ?", filter.BeneficiaryAccountID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.PeriodFrom != nil {
		query = query.Where("period_start >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		query = query.Where("period_start <= ?", *filter.PeriodTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithReferral {
		query = query.Preload("Referral")
	}

	var entries []models.CommissionLedgerEntry
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ConfirmDueEntries 批量将到期的待结算佣金置为可用
func (r *GormCommissionRepository) ConfirmDueEntries(now time.Time) (int64, error) {
	result := r.db.Model(&models.CommissionLedgerEntry{}).
		Where("status = ?", constants.CommissionStatusPending).
		Where("confirm_at IS NOT NULL AND confirm_at <= ?", now).
		Updates(map[string]interface{}{
			"status":       constants.CommissionStatusAvailable,
			"available_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumAmountByBeneficiary 汇总受益账户指定状态的佣金金额
func (r *GormCommissionRepository) SumAmountByBeneficiary(beneficiaryAccountID uint, statuses []string) (models.Money, error) {
	if beneficiaryAccountID == 0 {
		return models.Money{}, nil
	}

	type sumRow struct {
		Total models.Money `gorm:"column:total"`
	}

	query := r.db.Model(&models.CommissionLedgerEntry{}).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Where("beneficiary_account_id = ?", beneficiaryAccountID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var row sumRow
	if err := query.Scan(&row).Error; err != nil {
		return models.Money{}, err
	}
	return row.Total, nil
}
