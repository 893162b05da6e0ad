package serviceapi

import "github.com/sitewave-growth/internal/provider"

// Handler 服务间 API 处理器，由平台、计费、分析服务持服务令牌调用
type Handler struct {
	*provider.Container
}

// New 创建服务间接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
