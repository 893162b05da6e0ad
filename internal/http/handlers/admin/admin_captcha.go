package admin

import (
	"errors"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCaptchaSettings 获取验证码配置（脱敏）
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, service.CaptchaSettingToMap(setting))
}

// UpdateCaptchaSettings 更新验证码配置并即时生效
func (h *Handler) UpdateCaptchaSettings(c *gin.Context) {
	var patch service.CaptchaSettingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.PatchCaptchaSetting(h.Config.Captcha, patch)
	if errors.Is(err, service.ErrCaptchaConfigInvalid) {
		respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	// 新配置立即作用于后续登录，公开配置缓存同步失效
	h.Config.Captcha = service.CaptchaSettingToConfig(setting)
	if h.CaptchaService != nil {
		h.CaptchaService.SetDefaultConfig(h.Config.Captcha)
		h.CaptchaService.InvalidateCache()
	}
	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)

	response.Success(c, service.CaptchaSettingToMap(setting))
}
