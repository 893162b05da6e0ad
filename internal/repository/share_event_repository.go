package repository

import (
	"strings"

	"github.com/sitewave-growth/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShareEventRepository 分享事件数据访问接口（仅追加，不提供更新与删除）
type ShareEventRepository interface {
	WithTx(tx *gorm.DB) ShareEventRepository

	Create(event *models.ShareEvent) error
	GetByID(id uint) (*models.ShareEvent, error)
	List(filter ShareEventListFilter) ([]models.ShareEvent, int64, error)
	CountByArtifact(artifactID uint) (int64, error)
	SumBoostByPlatform(artifactID uint) (map[string]decimal.Decimal, error)
}

// GormShareEventRepository GORM 分享事件仓储
type GormShareEventRepository struct {
	db *gorm.DB
}

// NewShareEventRepository 创建分享事件仓库
func NewShareEventRepository(db *gorm.DB) *GormShareEventRepository {
	return &GormShareEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShareEventRepository) WithTx(tx *gorm.DB) ShareEventRepository {
	if tx == nil {
		return r
	}
	return &GormShareEventRepository{db: tx}
}

// Create 写入分享事件
func (r *GormShareEventRepository) Create(event *models.ShareEvent) error {
	return r.db.Create(event).Error
}

// GetByID 根据 ID 获取分享事件
func (r *GormShareEventRepository) GetByID(id uint) (*models.ShareEvent, error) {
	if id == 0 {
		return nil, nil
	}
	var event models.ShareEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// List 查询分享事件列表
func (r *GormShareEventRepository) List(filter ShareEventListFilter) ([]models.ShareEvent, int64, error) {
	query := r.db.Model(&models.ShareEvent{})

	if filter.ArtifactID > 0 {
		query = query.Where("artifact_id = ?", filter.ArtifactID)
	}
	if filter.ActorAccountID > 0 {
		query = query.Where("actor_account_id = ?", filter.ActorAccountID)
	}
	if platform := strings.TrimSpace(filter.Platform); platform != "" {
		query = query.Where("platform = ?", platform)
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

	var events []models.ShareEvent
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CountByArtifact 统计站点的分享事件总数
func (r *GormShareEventRepository) CountByArtifact(artifactID uint) (int64, error) {
	if artifactID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.ShareEvent{}).Where("artifact_id = ?", artifactID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumBoostByPlatform 按平台聚合站点分享事件的加成权重（计分输入）
func (r *GormShareEventRepository) SumBoostByPlatform(artifactID uint) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal)
	if artifactID == 0 {
		return result, nil
	}

	type platformBoostRow struct {
		Platform   string          `gorm:"column:platform"`
		TotalBoost decimal.Decimal `gorm:"column:total_boost"`
	}

	var rows []platformBoostRow
	err := r.db.Model(&models.ShareEvent{}).
		Select("platform, COALESCE(SUM(boost_weight), 0) AS total_boost").
		Where("artifact_id = ?", artifactID).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.Platform] = row.TotalBoost
	}
	return result, nil
}
