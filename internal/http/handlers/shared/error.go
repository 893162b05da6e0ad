package shared

import (
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/i18n"
	"github.com/sitewave-growth/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := requestIDFrom(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	value, ok := c.Get("request_id")
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}

// RespondError 按 i18n 词条返回错误响应。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回已定稿消息的错误响应，有底层错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
