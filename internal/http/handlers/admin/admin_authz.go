package admin

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/authz"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRoleForm struct {
	Role string `json:"role" binding:"required"`
}

type authzGrantForm struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzRoleAssignForm struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 当前管理员的权限快照：角色与展开后的有效授权
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.AdminRoles(adminID)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	grants, err := h.AuthzService.EffectiveGrants(adminID)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	isSuper, _ := c.Value("admin_is_super").(bool)

	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuper,
		"roles":    roles,
		"grants":   grants,
	})
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.Roles()
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAdmins 管理员列表，逐个附带角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	items := make([]gin.H, 0, len(admins))
	for i := range admins {
		roles, roleErr := h.AuthzService.AdminRoles(admins[i].ID)
		if roleErr != nil {
			respondAuthzError(c, roleErr)
			return
		}
		items = append(items, adminSummary(&admins[i], roles))
	}
	response.Success(c, items)
}

func adminSummary(admin *models.Admin, roles []string) gin.H {
	return gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"display_name":  admin.DisplayName,
		"is_super":      admin.IsSuper,
		"disabled":      admin.Disabled,
		"last_login_at": admin.LastLoginAt,
		"created_at":    admin.CreatedAt,
		"roles":         roles,
	}
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var form authzRoleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	role, err := h.AuthzService.EnsureRole(form.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}

	audit := authzAudit(c, "role_create")
	audit.Role = role
	audit.Detail = models.JSON{"role": role}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_role_created",
		"operator_admin_id", operatorID(c),
		"role", role,
	)

	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色，预置角色拒绝删除
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}

	if err := h.AuthzService.RemoveRole(role); err != nil {
		if errors.Is(err, authz.ErrRoleBuiltin) {
			respondError(c, response.CodeBadRequest, "error.authz_role_builtin", nil)
			return
		}
		respondAuthzError(c, err)
		return
	}

	audit := authzAudit(c, "role_delete")
	audit.Role = role
	audit.Detail = models.JSON{"role": role}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_role_deleted",
		"operator_admin_id", operatorID(c),
		"role", role,
	)

	response.Success(c, nil)
}

// GetAuthzRolePolicies 角色持有的授权列表
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}

	grants, err := h.AuthzService.RoleGrants(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, grants)
}

// GrantAuthzPolicy 给角色追加一条授权
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, "policy_grant", "admin_authz_policy_granted", h.AuthzService.GrantToRole)
}

// RevokeAuthzPolicy 撤销角色的一条授权
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changeRolePolicy(c, "policy_revoke", "admin_authz_policy_revoked", h.AuthzService.RevokeFromRole)
}

// changeRolePolicy 授予与撤销共用的流程：绑定、执行、审计、日志
func (h *Handler) changeRolePolicy(c *gin.Context, auditAction, event string, apply func(role, object, action string) error) {
	var form authzGrantForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := apply(form.Role, form.Object, form.Action); err != nil {
		respondAuthzError(c, err)
		return
	}

	audit := authzAudit(c, auditAction)
	audit.Role = form.Role
	audit.Object = form.Object
	audit.Method = form.Action
	audit.Detail = models.JSON{
		"role":   form.Role,
		"object": form.Object,
		"method": strings.ToUpper(strings.TrimSpace(form.Action)),
	}
	h.recordAuthzAudit(c, audit)
	logger.Infow(event,
		"operator_admin_id", operatorID(c),
		"role", form.Role,
		"object", form.Object,
		"action", form.Action,
	)

	response.Success(c, nil)
}

// GetAuthzAdminRoles 查询指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return
	}

	roles, err := h.AuthzService.AdminRoles(adminID)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 整体替换指定管理员的角色集合
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	var form authzRoleAssignForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return
	}

	if err := h.AuthzService.ReplaceAdminRoles(adminID, form.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}

	audit := authzAudit(c, "admin_roles_update")
	audit.TargetAdminID = &adminID
	audit.TargetUsername = admin.Username
	audit.Detail = models.JSON{
		"target_admin_id": adminID,
		"target_username": admin.Username,
		"roles":           form.Roles,
	}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_admin_roles_updated",
		"operator_admin_id", operatorID(c),
		"target_admin_id", adminID,
		"roles", form.Roles,
	)

	response.Success(c, nil)
}

// respondAuthzError 授权后端不可用按系统错误处理，其余按参数错误
func respondAuthzError(c *gin.Context, err error) {
	if errors.Is(err, authz.ErrUnavailable) {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	respondError(c, response.CodeBadRequest, "error.bad_request", err)
}

// authzAudit 预填操作者上下文的审计记录，调用方补齐目标与明细
func authzAudit(c *gin.Context, action string) service.AuthzAuditRecordInput {
	return service.AuthzAuditRecordInput{
		OperatorAdminID:  operatorID(c),
		OperatorUsername: contextString(c, "username"),
		Action:           action,
		RequestID:        contextString(c, "request_id"),
	}
}

// recordAuthzAudit 审计是旁路动作，失败只告警不影响响应
func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	if h == nil || h.AuthzAuditService == nil {
		return
	}
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("admin_authz_audit_record_failed",
			"action", input.Action,
			"operator_admin_id", input.OperatorAdminID,
			"error", err,
		)
	}
}

func adminIDParam(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// roleParam 解析路径中的角色名，兼容 URL 编码，为空时直接写出错误
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	role := strings.TrimSpace(raw)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return role, true
}

// operatorID 审计字段尽力读取，上下文缺失时置零而不打断主流程
func operatorID(c *gin.Context) uint {
	switch id := c.Value("admin_id").(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	case float64:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}

func contextString(c *gin.Context, key string) string {
	value, _ := c.Value(key).(string)
	return strings.TrimSpace(value)
}
