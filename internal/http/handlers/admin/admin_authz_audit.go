package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 权限审计日志列表，支持操作者、角色、对象与时间窗过滤
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AuthzAuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   strings.TrimSpace(c.Query("action")),
		Role:     strings.TrimSpace(c.Query("role")),
		Object:   strings.TrimSpace(c.Query("object")),
		Method:   strings.TrimSpace(c.Query("method")),
	}

	var ok bool
	if filter.OperatorAdminID, ok = optionalQueryID(c, "operator_admin_id"); !ok {
		return
	}
	if filter.TargetAdminID, ok = optionalQueryID(c, "target_admin_id"); !ok {
		return
	}
	if filter.CreatedFrom, ok = optionalQueryTime(c, "created_from"); !ok {
		return
	}
	if filter.CreatedTo, ok = optionalQueryTime(c, "created_to"); !ok {
		return
	}

	items, total, err := h.AuthzAuditService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// optionalQueryID 解析可选的数字查询参数，非法时写出响应并返回 false
func optionalQueryID(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(parsed), true
}

// optionalQueryTime 解析可选的 RFC3339 时间查询参数，非法时写出响应并返回 false
func optionalQueryTime(c *gin.Context, name string) (*time.Time, bool) {
	value, err := parseTimeNullable(strings.TrimSpace(c.Query(name)))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return nil, false
	}
	return value, true
}
