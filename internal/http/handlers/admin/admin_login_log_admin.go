package admin

import (
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminLoginLogs 获取管理员登录日志列表
func (h *Handler) GetAdminLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AdminLoginLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		Username:   strings.TrimSpace(c.Query("username")),
		Status:     strings.TrimSpace(c.Query("status")),
		FailReason: strings.TrimSpace(c.Query("fail_reason")),
		ClientIP:   strings.TrimSpace(c.Query("client_ip")),
	}

	var ok bool
	if filter.AdminID, ok = optionalQueryID(c, "admin_id"); !ok {
		return
	}
	if filter.CreatedFrom, ok = optionalQueryTime(c, "created_from"); !ok {
		return
	}
	if filter.CreatedTo, ok = optionalQueryTime(c, "created_to"); !ok {
		return
	}

	logs, total, err := h.AdminLoginLogService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_login_log_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
