package admin

import (
	"github.com/sitewave-growth/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getAdminID 读取 JWT 中间件写入的管理员 ID，缺失或非法时直接写出错误响应
func getAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	switch id := value.(type) {
	case uint:
		return id, true
	case int:
		if id >= 0 {
			return uint(id), true
		}
	case float64:
		if id >= 0 {
			return uint(id), true
		}
	default:
		respondError(c, response.CodeInternal, "error.admin_id_type_invalid", nil)
		return 0, false
	}
	respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
	return 0, false
}
