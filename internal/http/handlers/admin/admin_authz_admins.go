package admin

import (
	"errors"
	"sort"
	"strings"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/i18n"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

const protectedSuperAdminUsername = "admin"

type authzAdminForm struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	IsSuper     *bool  `json:"is_super"`
}

type authzAdminPatchForm struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name"`
	IsSuper     *bool   `json:"is_super"`
	Disabled    *bool   `json:"disabled"`
}

// CreateAuthzAdmin 创建管理员
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var form authzAdminForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	username, err := normalizeAdminUsername(form.Username)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
		return
	}
	if h.usernameTaken(c, username, 0, "error.admin_create_failed") {
		return
	}
	hash, ok := h.hashNewPassword(c, form.Password, "error.admin_create_failed")
	if !ok {
		return
	}

	admin := &models.Admin{
		Username:     username,
		DisplayName:  strings.TrimSpace(form.DisplayName),
		PasswordHash: hash,
		// 根账号无论请求怎么写都持有超管位
		IsSuper: (form.IsSuper != nil && *form.IsSuper) || isProtectedRoot(username),
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	audit := authzAudit(c, "admin_create")
	audit.TargetAdminID = &admin.ID
	audit.TargetUsername = admin.Username
	audit.Detail = models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"display_name":    admin.DisplayName,
		"is_super":        admin.IsSuper,
	}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_admin_created",
		"operator_admin_id", operatorID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"is_super", admin.IsSuper,
	)

	response.Success(c, admin)
}

// UpdateAuthzAdmin 更新管理员资料、超管位与禁用状态
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	var form authzAdminPatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, ok := h.loadAdmin(c, adminID, "error.admin_update_failed")
	if !ok {
		return
	}

	changed := make([]string, 0, 5)

	if form.Username != nil {
		username, err := normalizeAdminUsername(*form.Username)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
			return
		}
		if username != admin.Username {
			if h.usernameTaken(c, username, admin.ID, "error.admin_update_failed") {
				return
			}
			admin.Username = username
			changed = append(changed, "username")
		}
	}

	if form.DisplayName != nil {
		displayName := strings.TrimSpace(*form.DisplayName)
		if displayName != admin.DisplayName {
			admin.DisplayName = displayName
			changed = append(changed, "display_name")
		}
	}

	if form.IsSuper != nil {
		next := *form.IsSuper
		if isProtectedRoot(admin.Username) {
			next = true
		}
		if admin.IsSuper != next {
			admin.IsSuper = next
			changed = append(changed, "is_super")
		}
	}

	if form.Disabled != nil && *form.Disabled != admin.Disabled {
		if *form.Disabled {
			if !h.canDisable(c, admin) {
				return
			}
			// 禁用同时吊销存量令牌，重新启用后旧会话不复活
			service.RevokeAdminSessions(admin)
		}
		admin.Disabled = *form.Disabled
		changed = append(changed, "disabled")
	}

	if form.Password != nil {
		hash, ok := h.hashNewPassword(c, *form.Password, "error.admin_update_failed")
		if !ok {
			return
		}
		admin.PasswordHash = hash
		service.RevokeAdminSessions(admin)
		changed = append(changed, "password")
	}

	if len(changed) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_update_failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	sort.Strings(changed)
	if operatorID(c) == admin.ID {
		c.Set("admin_is_super", admin.IsSuper)
	}

	audit := authzAudit(c, "admin_update")
	audit.TargetAdminID = &admin.ID
	audit.TargetUsername = admin.Username
	audit.Detail = models.JSON{
		"target_admin_id": admin.ID,
		"target_username": admin.Username,
		"updated_fields":  changed,
		"is_super":        admin.IsSuper,
		"disabled":        admin.Disabled,
	}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_admin_updated",
		"operator_admin_id", operatorID(c),
		"target_admin_id", admin.ID,
		"target_username", admin.Username,
		"updated_fields", changed,
	)

	response.Success(c, admin)
}

// DeleteAuthzAdmin 删除管理员
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	adminID, ok := adminIDParam(c)
	if !ok {
		return
	}
	admin, ok := h.loadAdmin(c, adminID, "error.admin_delete_failed")
	if !ok {
		return
	}
	if operatorID(c) == adminID {
		respondError(c, response.CodeBadRequest, "error.admin_delete_self_forbidden", nil)
		return
	}
	if isProtectedRoot(admin.Username) {
		respondError(c, response.CodeBadRequest, "error.admin_delete_protected", nil)
		return
	}

	count, err := h.AdminRepo.Count()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if count <= 1 {
		respondError(c, response.CodeBadRequest, "error.admin_delete_last_forbidden", nil)
		return
	}

	// 先清空角色绑定再删账号，不留悬挂的授权主体
	if err := h.AuthzService.ReplaceAdminRoles(adminID, nil); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), adminID)

	audit := authzAudit(c, "admin_delete")
	audit.TargetAdminID = &adminID
	audit.TargetUsername = admin.Username
	audit.Detail = models.JSON{
		"target_admin_id": adminID,
		"target_username": admin.Username,
	}
	h.recordAuthzAudit(c, audit)
	logger.Infow("admin_authz_admin_deleted",
		"operator_admin_id", operatorID(c),
		"target_admin_id", adminID,
		"target_username", admin.Username,
	)

	response.Success(c, nil)
}

// loadAdmin 按 ID 取管理员，查询失败或不存在时直接写出响应
func (h *Handler) loadAdmin(c *gin.Context, adminID uint, failKey string) (*models.Admin, bool) {
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return nil, false
	}
	return admin, true
}

// usernameTaken 用户名冲突或查询失败时写出响应并返回 true
func (h *Handler) usernameTaken(c *gin.Context, username string, selfID uint, failKey string) bool {
	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return true
	}
	if existing != nil && existing.ID != selfID {
		respondError(c, response.CodeBadRequest, "error.admin_username_exists", nil)
		return true
	}
	return false
}

// hashNewPassword 校验密码策略并生成哈希，失败时直接写出响应
func (h *Handler) hashNewPassword(c *gin.Context, raw, failKey string) (string, bool) {
	password := strings.TrimSpace(raw)
	if password == "" {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return "", false
	}
	if err := h.AuthService.ValidatePassword(password); err != nil {
		if !respondAdminPasswordPolicyError(c, err) {
			respondError(c, response.CodeBadRequest, "error.password_weak", err)
		}
		return "", false
	}
	hash, err := h.AuthService.HashPassword(password)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return "", false
	}
	return hash, true
}

// canDisable 自己和根账号不允许禁用
func (h *Handler) canDisable(c *gin.Context, admin *models.Admin) bool {
	if operatorID(c) == admin.ID {
		respondError(c, response.CodeBadRequest, "error.admin_disable_self_forbidden", nil)
		return false
	}
	if isProtectedRoot(admin.Username) {
		respondError(c, response.CodeBadRequest, "error.admin_disable_protected", nil)
		return false
	}
	return true
}

func isProtectedRoot(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), protectedSuperAdminUsername)
}

func normalizeAdminUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	switch {
	case username == "":
		return "", errors.New("username is required")
	case strings.ContainsAny(username, " \t\r\n"):
		return "", errors.New("username contains whitespace")
	}
	if n := len([]rune(username)); n < 3 || n > 64 {
		return "", errors.New("username length out of range")
	}
	return username, nil
}

// respondAdminPasswordPolicyError 弱密码错误翻译成带参数的本地化提示
func respondAdminPasswordPolicyError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrWeakPassword) {
		return false
	}
	type localized interface {
		Key() string
		Args() []interface{}
	}
	if perr, ok := err.(localized); ok {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
	} else {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
	}
	return true
}
