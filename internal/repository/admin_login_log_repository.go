package repository

import (
	"strings"

	"github.com/sitewave-growth/internal/models"

	"gorm.io/gorm"
)

// AdminLoginLogRepository 管理员登录日志数据访问接口
type AdminLoginLogRepository interface {
	Create(log *models.AdminLoginLog) error
	ListAdmin(filter AdminLoginLogListFilter) ([]models.AdminLoginLog, int64, error)
}

// GormAdminLoginLogRepository GORM 实现
type GormAdminLoginLogRepository struct {
	db *gorm.DB
}

// NewAdminLoginLogRepository 创建管理员登录日志仓库
func NewAdminLoginLogRepository(db *gorm.DB) *GormAdminLoginLogRepository {
	return &GormAdminLoginLogRepository{db: db}
}

// Create 创建登录日志
func (r *GormAdminLoginLogRepository) Create(log *models.AdminLoginLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListAdmin 管理端查询登录日志
func (r *GormAdminLoginLogRepository) ListAdmin(filter AdminLoginLogListFilter) ([]models.AdminLoginLog, int64, error) {
	query := r.db.Model(&models.AdminLoginLog{})

	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if username := strings.TrimSpace(filter.Username); username != "" {
		query = query.Where("username = ?", username)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if reason := strings.TrimSpace(filter.FailReason); reason != "" {
		query = query.Where("fail_reason = ?", reason)
	}
	if ip := strings.TrimSpace(filter.ClientIP); ip != "" {
		query = query.Where("client_ip = ?", ip)
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

	var logs []models.AdminLoginLog
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
