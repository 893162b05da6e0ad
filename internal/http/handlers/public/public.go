package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	// 默认配置
	defaults := map[string]interface{}{
		"languages": []string{"zh-CN", "zh-TW", "en-US"},
		"brand": map[string]interface{}{
			"site_name": "SiteWave",
		},
		"contact": map[string]interface{}{
			"support_email": "",
			"docs_url":      "",
		},
	}

	if cached, ok := readCachedConfig(c); ok {
		response.Success(c, cached)
		return
	}

	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	// 展示位档位门槛随配置下发，营销站用于渲染徽章图例
	showcaseSetting, err := h.SettingService.GetShowcaseSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	data["showcase_tiers"] = map[string]interface{}{
		"silver_min_score":   showcaseSetting.SilverMinScore,
		"gold_min_score":     showcaseSetting.GoldMinScore,
		"platinum_min_score": showcaseSetting.PlatinumMinScore,
		"viral_min_score":    showcaseSetting.ViralMinScore,
	}

	if err := h.attachPublicCaptcha(data); err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

func readCachedConfig(c *gin.Context) (map[string]interface{}, bool) {
	var cached map[string]interface{}
	hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached)
	return cached, err == nil && hit
}

// attachPublicCaptcha 把对外安全的验证码配置并入响应，未启用时静默跳过
func (h *Handler) attachPublicCaptcha(data map[string]interface{}) error {
	if h.CaptchaService == nil {
		return nil
	}
	setting, err := h.CaptchaService.GetPublicSetting()
	if err != nil {
		return err
	}
	data["captcha"] = setting
	return nil
}

// GetShowcase 获取公开展示位列表
func (h *Handler) GetShowcase(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ShowcaseListFilter{
		Page:         page,
		PageSize:     pageSize,
		BoostTier:    strings.TrimSpace(c.Query("boost_tier")),
		WithArtifact: true,
	}

	entries, total, err := h.ShowcaseService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.showcase_fetch_failed", err)
		return
	}

	rows := make([]gin.H, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		row := gin.H{
			"artifact_id":   entry.ArtifactID,
			"boost_tier":    entry.BoostTier,
			"display_order": entry.DisplayOrder,
			"score":         entry.ScoreSnapshot,
			"share_count":   entry.ShareCountSnapshot,
			"featured_at":   entry.FeaturedAt,
		}
		if entry.Artifact.ID != 0 {
			row["public_id"] = entry.Artifact.PublicID
			row["title"] = entry.Artifact.Title
			row["slug"] = entry.Artifact.Slug
			row["status"] = entry.Artifact.Status
		}
		rows = append(rows, row)
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
