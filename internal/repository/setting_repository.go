package repository

import (
	"errors"

	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
)

// SettingRepository 设置数据访问接口
type SettingRepository interface {
	GetByKey(key string) (*models.Setting, error)
	Upsert(key string, value models.JSON) (*models.Setting, error)
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// GetByKey 按键读取设置，不存在时返回 nil
func (r *GormSettingRepository) GetByKey(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	switch {
	case err == nil:
		return &setting, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

// Upsert 更新设置，键不存在时创建
func (r *GormSettingRepository) Upsert(key string, value models.JSON) (*models.Setting, error) {
	existing, err := r.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.ValueJSON = value
		if err := r.db.Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	created := &models.Setting{Key: key, ValueJSON: value}
	if err := r.db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}
