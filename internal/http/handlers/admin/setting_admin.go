package admin

import (
	"errors"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// 与公开配置接口共用的缓存键，站点配置变更后需要主动失效
const publicConfigCacheKey = "public:config"

// GetGrowthSettings 获取增长计分配置
func (h *Handler) GetGrowthSettings(c *gin.Context) {
	setting, err := h.SettingService.GetGrowthSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateGrowthSettings 更新增长计分配置
func (h *Handler) UpdateGrowthSettings(c *gin.Context) {
	var req service.GrowthSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateGrowthSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGrowthConfigInvalid):
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		}
		return
	}

	response.Success(c, setting)
}

// GetCommissionSettings 获取佣金配置
func (h *Handler) GetCommissionSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCommissionSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateCommissionSettings 更新佣金配置
func (h *Handler) UpdateCommissionSettings(c *gin.Context) {
	var req service.CommissionSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateCommissionSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionConfigInvalid):
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		}
		return
	}

	response.Success(c, setting)
}

// GetShowcaseSettings 获取展示位配置
func (h *Handler) GetShowcaseSettings(c *gin.Context) {
	setting, err := h.SettingService.GetShowcaseSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateShowcaseSettings 更新展示位配置
func (h *Handler) UpdateShowcaseSettings(c *gin.Context) {
	var req service.ShowcaseSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateShowcaseSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShowcaseConfigInvalid):
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		}
		return
	}

	// 展示位分层阈值会透传到公开配置，更新后同步失效缓存
	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	response.Success(c, setting)
}

// GetDashboardSettings 获取仪表盘配置
func (h *Handler) GetDashboardSettings(c *gin.Context) {
	setting, err := h.SettingService.GetDashboardSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateDashboardSettings 更新仪表盘配置
func (h *Handler) UpdateDashboardSettings(c *gin.Context) {
	var req service.DashboardSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	normalized := service.NormalizeDashboardSetting(req)
	if _, err := h.SettingService.Update(constants.SettingKeyDashboardConfig, service.DashboardSettingToMap(normalized)); err != nil {
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	response.Success(c, normalized)
}
