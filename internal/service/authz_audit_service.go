package service

import (
	"strings"
	"time"

	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"
)

// AuthzAuditRecordInput 权限审计记录输入
type AuthzAuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	TargetAdminID    *uint
	TargetUsername   string
	Action           string
	Role             string
	Object           string
	Method           string
	RequestID        string
	Detail           models.JSON
}

// normalized 返回去除空白后的拷贝，HTTP 方法统一大写
func (in AuthzAuditRecordInput) normalized() AuthzAuditRecordInput {
	in.OperatorUsername = strings.TrimSpace(in.OperatorUsername)
	in.TargetUsername = strings.TrimSpace(in.TargetUsername)
	in.Action = strings.TrimSpace(in.Action)
	in.Role = strings.TrimSpace(in.Role)
	in.Object = strings.TrimSpace(in.Object)
	in.Method = strings.ToUpper(strings.TrimSpace(in.Method))
	in.RequestID = strings.TrimSpace(in.RequestID)
	return in
}

// AuthzAuditService 权限审计服务
type AuthzAuditService struct {
	repo repository.AuthzAuditLogRepository
}

// NewAuthzAuditService 创建权限审计服务
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository) *AuthzAuditService {
	return &AuthzAuditService{repo: repo}
}

// Record 落一条权限审计日志，操作者或动作缺失时静默跳过
func (s *AuthzAuditService) Record(input AuthzAuditRecordInput) error {
	if s == nil || s.repo == nil || input.OperatorAdminID == 0 {
		return nil
	}
	input = input.normalized()
	if input.Action == "" {
		return nil
	}

	return s.repo.Create(&models.AuthzAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: input.OperatorUsername,
		TargetAdminID:    input.TargetAdminID,
		TargetUsername:   input.TargetUsername,
		Action:           input.Action,
		Role:             input.Role,
		Object:           input.Object,
		Method:           input.Method,
		RequestID:        input.RequestID,
		DetailJSON:       input.Detail,
		CreatedAt:        time.Now(),
	})
}

// ListForAdmin 管理端查询权限审计日志
func (s *AuthzAuditService) ListForAdmin(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	return s.repo.ListAdmin(filter)
}
