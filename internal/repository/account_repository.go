package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository 账户数据访问接口
type AccountRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AccountRepository

	GetByID(id uint) (*models.Account, error)
	GetByIDForUpdate(id uint) (*models.Account, error)
	GetByPublicID(publicID string) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	Create(account *models.Account) error
	Update(account *models.Account) error
	List(filter AccountListFilter) ([]models.Account, int64, error)
	IncrementActorShareStats(id uint, boostWeight decimal.Decimal) error
	IncrementSharesReceived(id uint) error
	AddLifetimeCommission(id uint, amount decimal.Decimal) error
	UpdateStatus(id uint, status string, disabledAt *time.Time) error
}

// GormAccountRepository GORM 账户仓储
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓库
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAccountRepository) WithTx(tx *gorm.DB) AccountRepository {
	if tx == nil {
		return r
	}
	return &GormAccountRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAccountRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取账户
func (r *GormAccountRepository) GetByID(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByIDForUpdate 按 ID 加锁获取账户
func (r *GormAccountRepository) GetByIDForUpdate(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	var account models.Account
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByPublicID 根据平台侧标识获取账户
func (r *GormAccountRepository) GetByPublicID(publicID string) (*models.Account, error) {
	trimmed := strings.TrimSpace(publicID)
	if trimmed == "" {
		return nil, nil
	}
	var account models.Account
	if err := r.db.Where("public_id = ?", trimmed).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail 根据邮箱获取账户
func (r *GormAccountRepository) GetByEmail(email string) (*models.Account, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, nil
	}
	var account models.Account
	if err := r.db.Where("email = ?", trimmed).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create 创建账户
func (r *GormAccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// Update 更新账户
func (r *GormAccountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// List 查询账户列表
func (r *GormAccountRepository) List(filter AccountListFilter) ([]models.Account, int64, error) {
	query := r.db.Model(&models.Account{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		if condition, args := keywordLikeClause(r.db, keyword, []string{"email", "display_name", "public_id"}); condition != "" {
			query = query.Where(condition, args...)
		}
	}
	if tier := strings.TrimSpace(filter.Tier); tier != "" {
		query = query.Where("subscription_tier = ?", tier)
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

	var accounts []models.Account
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// IncrementActorShareStats 递增分享发起计数并累加病毒分（原子更新）
func (r *GormAccountRepository) IncrementActorShareStats(id uint, boostWeight decimal.Decimal) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"shares_initiated": gorm.Expr("shares_initiated + 1"),
			"viral_score":      gorm.Expr("viral_score + ?", boostWeight.Round(2)),
		}).Error
}

// IncrementSharesReceived 递增名下站点被分享计数（原子更新）
func (r *GormAccountRepository) IncrementSharesReceived(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("shares_received", gorm.Expr("shares_received + 1")).Error
}

// AddLifetimeCommission 累加账户累计佣金（原子更新）
func (r *GormAccountRepository) AddLifetimeCommission(id uint, amount decimal.Decimal) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("lifetime_commission", gorm.Expr("lifetime_commission + ?", amount.Round(2))).Error
}

// UpdateStatus 更新账户状态（软禁用/恢复）
func (r *GormAccountRepository) UpdateStatus(id uint, status string, disabledAt *time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      strings.TrimSpace(status),
			"disabled_at": disabledAt,
		}).Error
}
