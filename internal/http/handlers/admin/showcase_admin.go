package admin

import (
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminShowcase 获取展示位列表
func (h *Handler) GetAdminShowcase(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	boostTier := strings.TrimSpace(c.Query("boost_tier"))

	var accountID uint
	if accountRaw := strings.TrimSpace(c.Query("account_id")); accountRaw != "" {
		parsed, err := strconv.ParseUint(accountRaw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		accountID = uint(parsed)
	}

	entries, total, err := h.ShowcaseService.List(c.Request.Context(), repository.ShowcaseListFilter{
		Page:         page,
		PageSize:     pageSize,
		BoostTier:    boostTier,
		AccountID:    accountID,
		WithArtifact: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.showcase_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, entries, response.BuildPagination(page, pageSize, total))
}

// RefreshAdminShowcase 手工触发展示位重排
func (h *Handler) RefreshAdminShowcase(c *gin.Context) {
	if err := h.ShowcaseService.RequestRefresh("admin_manual"); err != nil {
		respondError(c, response.CodeInternal, "error.showcase_refresh_failed", err)
		return
	}

	response.Success(c, gin.H{"requested": true})
}
