package public

import "github.com/sitewave-growth/internal/provider"

// Handler 公开 API 处理器，挂载只读、免鉴权的营销侧接口
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
