package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 登录请求携带的验证码凭据
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

func (r CaptchaPayloadRequest) toServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username       string                `json:"username" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginUser 登录响应里暴露的管理员信息
type LoginUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	User      LoginUser `json:"user"`
	ExpiresAt string    `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonBadRequest, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if !h.verifyLoginCaptcha(c, req) {
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonInvalidCredentials, response.CodeUnauthorized, "error.invalid_credentials", nil)
		return
	case errors.Is(err, service.ErrAdminDisabled):
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonAdminDisabled, response.CodeUnauthorized, "error.admin_disabled", nil)
		return
	case err != nil:
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonInternalError, response.CodeInternal, "error.login_failed", err)
		return
	}

	h.recordAdminLogin(c, admin.Username, admin.ID, constants.LoginLogStatusSuccess, "")
	response.Success(c, LoginResponse{
		Token:     token,
		User:      LoginUser{ID: admin.ID, Username: admin.Username},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// verifyLoginCaptcha 场景未开启时直接放行，校验失败时写出响应并返回 false
func (h *Handler) verifyLoginCaptcha(c *gin.Context, req LoginRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	err := h.CaptchaService.Verify(constants.CaptchaSceneAdminLogin, req.CaptchaPayload.toServicePayload())
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrCaptchaRequired):
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonCaptchaRequired, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonCaptchaInvalid, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonInternalError, response.CodeInternal, "error.captcha_config_invalid", err)
	default:
		h.loginFailure(c, req.Username, constants.LoginLogFailReasonInternalError, response.CodeInternal, "error.captcha_verify_failed", err)
	}
	return false
}

// loginFailure 失败路径统一落登录日志再写响应
func (h *Handler) loginFailure(c *gin.Context, username, failReason string, code int, key string, err error) {
	h.recordAdminLogin(c, username, 0, constants.LoginLogStatusFailed, failReason)
	respondError(c, code, key, err)
}

func (h *Handler) recordAdminLogin(c *gin.Context, username string, adminID uint, status, failReason string) {
	if h == nil || h.AdminLoginLogService == nil || c == nil {
		return
	}
	_ = h.AdminLoginLogService.Record(service.RecordAdminLoginInput{
		AdminID:    adminID,
		Username:   username,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		RequestID:  contextString(c, "request_id"),
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改当前管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrInvalidPassword):
		respondError(c, response.CodeBadRequest, "error.password_invalid", nil)
	case respondAdminPasswordPolicyError(c, err):
		// 弱密码响应已写出
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "error.not_found", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// GetSettings 按键读取设置，默认站点配置
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeySiteConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	if value == nil {
		// 键不存在返回空对象，前端不用区分 null
		value = models.JSON{}
	}
	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 写设置；站点配置变更连带失效公开配置缓存
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}
	h.invalidateSettingCaches(c, req.Key)
	response.Success(c, value)
}

// invalidateSettingCaches 站点配置落库后同步失效对外缓存
func (h *Handler) invalidateSettingCaches(c *gin.Context, key string) {
	if key == constants.SettingKeySiteConfig {
		_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	}
}
