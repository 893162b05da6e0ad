package repository

import (
	"errors"
	"strings"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArtifactRepository 站点数据访问接口
type ArtifactRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ArtifactRepository

	GetByID(id uint) (*models.Artifact, error)
	GetByIDForUpdate(id uint) (*models.Artifact, error)
	GetByPublicID(publicID string) (*models.Artifact, error)
	GetBySlug(slug string) (*models.Artifact, error)
	Create(artifact *models.Artifact) error
	Update(artifact *models.Artifact) error
	List(filter ArtifactListFilter) ([]models.Artifact, int64, error)
	ListIDsForRescore(batchSize int, afterID uint) ([]uint, error)
	ListShowcaseCandidates() ([]models.Artifact, error)
}

// GormArtifactRepository GORM 站点仓储
type GormArtifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository 创建站点仓库
func NewArtifactRepository(db *gorm.DB) *GormArtifactRepository {
	return &GormArtifactRepository{db: db}
}

// WithTx 绑定事务
func (r *GormArtifactRepository) WithTx(tx *gorm.DB) ArtifactRepository {
	if tx == nil {
		return r
	}
	return &GormArtifactRepository{db: tx}
}

// Transaction 执行事务
func (r *GormArtifactRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取站点
func (r *GormArtifactRepository) GetByID(id uint) (*models.Artifact, error) {
	if id == 0 {
		return nil, nil
	}
	var artifact models.Artifact
	if err := r.db.First(&artifact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artifact, nil
}

// GetByIDForUpdate 按 ID 加锁获取站点（分享入账事务内使用）
func (r *GormArtifactRepository) GetByIDForUpdate(id uint) (*models.Artifact, error) {
	if id == 0 {
		return nil, nil
	}
	var artifact models.Artifact
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&artifact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artifact, nil
}

// GetByPublicID 根据对外标识获取站点
func (r *GormArtifactRepository) GetByPublicID(publicID string) (*models.Artifact, error) {
	trimmed := strings.TrimSpace(publicID)
	if trimmed == "" {
		return nil, nil
	}
	var artifact models.Artifact
	if err := r.db.Where("public_id = ?", trimmed).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artifact, nil
}

// GetBySlug 根据短标识获取站点
func (r *GormArtifactRepository) GetBySlug(slug string) (*models.Artifact, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, nil
	}
	var artifact models.Artifact
	if err := r.db.Where("slug = ?", trimmed).First(&artifact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artifact, nil
}

// Create 创建站点
func (r *GormArtifactRepository) Create(artifact *models.Artifact) error {
	return r.db.Create(artifact).Error
}

// Update 更新站点
func (r *GormArtifactRepository) Update(artifact *models.Artifact) error {
	return r.db.Save(artifact).Error
}

// List 查询站点列表
func (r *GormArtifactRepository) List(filter ArtifactListFilter) ([]models.Artifact, int64, error) {
	query := r.db.Model(&models.Artifact{})

	if filter.OwnerAccountID > 0 {
		query = query.Where("owner_account_id = ?", filter.OwnerAccountID)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		if condition, args := keywordLikeClause(r.db, keyword, []string{"title", "slug", "public_id"}); condition != "" {
			query = query.Where(condition, args...)
		}
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.AutoFeatured != nil {
		query = query.Where("auto_featured = ?", *filter.AutoFeatured)
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

	order := "id DESC"
	switch strings.TrimSpace(filter.OrderBy) {
	case "score":
		order = "viral_score DESC, id DESC"
	case "shares":
		order = "external_share_count DESC, id DESC"
	}
	if filter.WithOwner {
		query = query.Preload("Owner")
	}

	var artifacts []models.Artifact
	if err := applyPagination(query.Order(order), filter.Page, filter.PageSize).Find(&artifacts).Error; err != nil {
		return nil, 0, err
	}
	return artifacts, total, nil
}

// ListIDsForRescore 分批取待重算病毒分的站点 ID（按 ID 升序翻页）
func (r *GormArtifactRepository) ListIDsForRescore(batchSize int, afterID uint) ([]uint, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	ids := make([]uint, 0, batchSize)
	err := r.db.Model(&models.Artifact{}).
		Where("status IN ?", []string{
			constants.ArtifactStatusActive,
			constants.ArtifactStatusFeatured,
			constants.ArtifactStatusViral,
		}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListShowcaseCandidates 查询可进入展示位的站点（分数降序，同分按精选时间升序）
func (r *GormArtifactRepository) ListShowcaseCandidates() ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := r.db.
		Where("status IN ?", []string{constants.ArtifactStatusFeatured, constants.ArtifactStatusViral}).
		Where("showcase_eligible = ?", true).
		Where("auto_featured = ?", true).
		Order("viral_score DESC, featured_at ASC").
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}
