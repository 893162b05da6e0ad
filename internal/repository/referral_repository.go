package repository

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 推荐关系数据访问接口
type ReferralRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ReferralRepository

	Create(referral *models.Referral) error
	GetByID(id uint) (*models.Referral, error)
	GetByIDForUpdate(id uint) (*models.Referral, error)
	GetByCode(code string) (*models.Referral, error)
	GetByPair(referrerAccountID uint, referredEmail string) (*models.Referral, error)
	GetByReferredAccountID(referredAccountID uint) (*models.Referral, error)
	Update(referral *models.Referral) error
	List(filter ReferralListFilter) ([]models.Referral, int64, error)
	CountByReferrer(referrerAccountID uint, statuses []string) (int64, error)
	ExpireStalePending(before time.Time, now time.Time) (int64, error)
}

// GormReferralRepository GORM 推荐关系仓储
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐关系仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// Transaction 在事务中执行
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Create 创建推荐关系
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// GetByID 根据 ID 获取推荐关系
func (r *GormReferralRepository) GetByID(id uint) (*models.Referral, error) {
	if id == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.First(&referral, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByIDForUpdate 根据 ID 锁定推荐关系（需在事务内使用）
func (r *GormReferralRepository) GetByIDForUpdate(id uint) (*models.Referral, error) {
	if id == 0 {
		return nil, nil
	}
	var referral models.Referral
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&referral, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByCode 根据推荐码获取推荐关系
func (r *GormReferralRepository) GetByCode(code string) (*models.Referral, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referral_code = ?", code).First(&referral).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByPair 根据推荐人与被推荐邮箱获取推荐关系
func (r *GormReferralRepository) GetByPair(referrerAccountID uint, referredEmail string) (*models.Referral, error) {
	referredEmail = strings.ToLower(strings.TrimSpace(referredEmail))
	if referrerAccountID == 0 || referredEmail == "" {
		return nil, nil
	}
	var referral models.Referral
	err := r.db.Where("referrer_account_id = ? AND referred_email = ?", referrerAccountID, referredEmail).
		First(&referral).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByReferredAccountID 根据被推荐账户获取推荐关系
func (r *GormReferralRepository) GetByReferredAccountID(referredAccountID uint) (*models.Referral, error) {
	if referredAccountID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referred_account_id = ?", referredAccountID).First(&referral).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// Update 更新推荐关系
func (r *GormReferralRepository) Update(referral *models.Referral) error {
	return r.db.Save(referral).Error
}

// List 查询推荐关系列表
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})

	if filter.ReferrerAccountID > 0 {
		query = query.Where("referrer_account_id = ?", filter.ReferrerAccountID)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.ReferredEmail)); email != "" {
		query = query.Where("referred_email = ?", email)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var referrals []models.Referral
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}

// CountByReferrer 统计推荐人名下指定状态的推荐数
func (r *GormReferralRepository) CountByReferrer(referrerAccountID uint, statuses []string) (int64, error) {
	if referrerAccountID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Referral{}).Where("referrer_account_id = ?", referrerAccountID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExpireStalePending 批量过期长期未激活的推荐关系
func (r *GormReferralRepository) ExpireStalePending(before time.Time, now time.Time) (int64, error) {
	result := r.db.Model(&models.Referral{}).
		Where("status = ?", constants.ReferralStatusPending).
		Where("created_at < ?", before).
		Updates(map[string]interface{}{
			"status":     constants.ReferralStatusExpired,
			"expired_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
