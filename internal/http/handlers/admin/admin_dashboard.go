package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview 后台仪表盘总览
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	h.serveDashboard(c, func(ctx context.Context, input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetOverview(ctx, input)
	})
}

// GetDashboardTrends 后台仪表盘趋势
func (h *Handler) GetDashboardTrends(c *gin.Context) {
	h.serveDashboard(c, func(ctx context.Context, input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetTrends(ctx, input)
	})
}

// GetDashboardPlatforms 后台仪表盘分享渠道分布
func (h *Handler) GetDashboardPlatforms(c *gin.Context) {
	h.serveDashboard(c, func(ctx context.Context, input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetPlatformBreakdown(ctx, input)
	})
}

// GetDashboardRankings 后台仪表盘排行榜
func (h *Handler) GetDashboardRankings(c *gin.Context) {
	h.serveDashboard(c, func(ctx context.Context, input service.DashboardQueryInput) (interface{}, error) {
		return h.DashboardService.GetRankings(ctx, input)
	})
}

// serveDashboard 四个仪表盘接口共用的查询解析与错误分流
func (h *Handler) serveDashboard(c *gin.Context, fetch func(context.Context, service.DashboardQueryInput) (interface{}, error)) {
	input, err := dashboardQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	data, err := fetch(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.dashboard_fetch_failed", err)
		return
	}
	response.Success(c, data)
}

func dashboardQuery(c *gin.Context) (service.DashboardQueryInput, error) {
	input := service.DashboardQueryInput{
		Range:    strings.TrimSpace(c.DefaultQuery("range", "7d")),
		Timezone: strings.TrimSpace(c.Query("tz")),
	}

	var err error
	if input.From, err = parseTimeNullable(strings.TrimSpace(c.Query("from"))); err != nil {
		return service.DashboardQueryInput{}, err
	}
	if input.To, err = parseTimeNullable(strings.TrimSpace(c.Query("to"))); err != nil {
		return service.DashboardQueryInput{}, err
	}
	if raw := strings.TrimSpace(c.Query("force_refresh")); raw != "" {
		if input.ForceRefresh, err = strconv.ParseBool(raw); err != nil {
			return service.DashboardQueryInput{}, err
		}
	}
	return input, nil
}
