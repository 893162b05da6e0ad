package repository

import (
	"strings"

	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
)

// ShowcaseRepository 展示位数据访问接口
type ShowcaseRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ShowcaseRepository

	Create(entry *models.ShowcaseEntry) error
	GetByArtifactID(artifactID uint) (*models.ShowcaseEntry, error)
	DeleteByArtifactID(artifactID uint) error
	ReplaceAll(entries []models.ShowcaseEntry) error
	List(filter ShowcaseListFilter) ([]models.ShowcaseEntry, int64, error)
	Count() (int64, error)
}

// GormShowcaseRepository GORM 展示位仓储
type GormShowcaseRepository struct {
	db *gorm.DB
}

// NewShowcaseRepository 创建展示位仓库
func NewShowcaseRepository(db *gorm.DB) *GormShowcaseRepository {
	return &GormShowcaseRepository{db: db}
}

// Transaction 在事务中执行
func (r *GormShowcaseRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormShowcaseRepository) WithTx(tx *gorm.DB) ShowcaseRepository {
	if tx == nil {
		return r
	}
	return &GormShowcaseRepository{db: tx}
}

// Create 写入展示位条目
func (r *GormShowcaseRepository) Create(entry *models.ShowcaseEntry) error {
	return r.db.Create(entry).Error
}

// GetByArtifactID 根据站点获取展示位条目
func (r *GormShowcaseRepository) GetByArtifactID(artifactID uint) (*models.ShowcaseEntry, error) {
	if artifactID == 0 {
		return nil, nil
	}
	var entry models.ShowcaseEntry
	if err := r.db.Where("artifact_id = ?", artifactID).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// DeleteByArtifactID 根据站点移除展示位条目
func (r *GormShowcaseRepository) DeleteByArtifactID(artifactID uint) error {
	if artifactID == 0 {
		return nil
	}
	return r.db.Where("artifact_id = ?", artifactID).Delete(&models.ShowcaseEntry{}).Error
}

// ReplaceAll 整体重建展示位（清空后批量写入）
func (r *GormShowcaseRepository) ReplaceAll(entries []models.ShowcaseEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ShowcaseEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// List 查询展示位列表（按展示顺序）
func (r *GormShowcaseRepository) List(filter ShowcaseListFilter) ([]models.ShowcaseEntry, int64, error) {
	query := r.db.Model(&models.ShowcaseEntry{})

	if tier := strings.TrimSpace(filter.BoostTier); tier != "" {
		query = query.Where("boost_tier = ?", tier)
	}
	if filter.AccountID > 0 {
		query = query.Where("account_id = ?", filter.AccountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithArtifact {
		query = query.Preload("Artifact")
	}

	var entries []models.ShowcaseEntry
	if err := applyPagination(query.Order("display_order ASC"), filter.Page, filter.PageSize).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Count 统计展示位条目数
func (r *GormShowcaseRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.ShowcaseEntry{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
