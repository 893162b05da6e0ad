package admin

import "github.com/sitewave-growth/internal/provider"

// Handler 管理端 API 处理器，直接复用容器内装配好的服务
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
