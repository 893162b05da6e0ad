package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/sitewave-growth/internal/authz"
	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/config"
	adminhandlers "github.com/sitewave-growth/internal/http/handlers/admin"
	publichandlers "github.com/sitewave-growth/internal/http/handlers/public"
	servicehandlers "github.com/sitewave-growth/internal/http/handlers/serviceapi"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(routerLogger(cfg)), CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	registerPublicRoutes(apiV1, publichandlers.New(c))
	registerServiceRoutes(apiV1, cfg, servicehandlers.New(c))
	registerAdminRoutes(r, apiV1, cfg, c, adminhandlers.New(c))

	return r
}

func routerLogger(cfg *config.Config) *zap.Logger {
	if logger.L != nil {
		return logger.L
	}
	return logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
}

// registerPublicRoutes 免鉴权的只读入口
func registerPublicRoutes(api *gin.RouterGroup, h *publichandlers.Handler) {
	public := api.Group("/public")
	public.GET("/config", h.GetConfig)
	public.GET("/showcase", h.GetShowcase)
	public.GET("/captcha/image", h.GetImageCaptcha)
}

// registerServiceRoutes 平台、计费、分析三方服务的写入口，走服务令牌鉴权
func registerServiceRoutes(api *gin.RouterGroup, cfg *config.Config, h *servicehandlers.Handler) {
	svc := api.Group("/service")
	svc.Use(ServiceAuthMiddleware(cfg.ServiceAuth))

	svc.POST("/accounts", h.ProvisionAccount)
	svc.PATCH("/accounts/:public_id/tier", h.UpdateAccountTier)
	svc.POST("/accounts/:public_id/disable", h.DisableAccount)
	svc.POST("/accounts/:public_id/enable", h.EnableAccount)

	svc.POST("/artifacts", h.CreateArtifact)
	svc.POST("/artifacts/:public_id/building", h.MarkArtifactBuilding)
	svc.POST("/artifacts/:public_id/publish", h.PublishArtifact)
	svc.POST("/artifacts/:public_id/engagement", h.IngestEngagement)

	svc.POST("/shares", h.RecordShare)

	svc.POST("/referrals", h.CreateReferral)
	svc.POST("/referrals/activate", h.ActivateReferral)
	svc.POST("/referrals/:id/convert", h.ConvertReferral)
	svc.POST("/referrals/:id/churn", h.ChurnReferral)

	svc.POST("/commissions", h.RecordCommission)
}

// registerAdminRoutes 管理端入口：登录带限流，其余全部过 JWT 与 RBAC
func registerAdminRoutes(engine *gin.Engine, api *gin.RouterGroup, cfg *config.Config, c *provider.Container, h *adminhandlers.Handler) {
	admin := api.Group("/admin")
	admin.POST("/login", RateLimitMiddleware(cache.Client(), adminLoginRateRule(cfg), KeyByIPAndJSONField("username")), h.AdminLogin)

	authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))

	// 仪表盘
	authorized.GET("/dashboard/overview", h.GetDashboardOverview)
	authorized.GET("/dashboard/trends", h.GetDashboardTrends)
	authorized.GET("/dashboard/platforms", h.GetDashboardPlatforms)
	authorized.GET("/dashboard/rankings", h.GetDashboardRankings)

	// 账户
	authorized.GET("/accounts", h.GetAdminAccounts)
	authorized.GET("/accounts/:id", h.GetAdminAccount)
	authorized.GET("/accounts/:id/commissions", h.GetAdminAccountCommissions)
	authorized.POST("/accounts/:id/disable", h.DisableAdminAccount)
	authorized.POST("/accounts/:id/enable", h.EnableAdminAccount)

	// 站点作品
	authorized.GET("/artifacts", h.GetAdminArtifacts)
	authorized.GET("/artifacts/:id", h.GetAdminArtifact)
	authorized.POST("/artifacts/:id/suspend", h.SuspendAdminArtifact)
	authorized.POST("/artifacts/:id/unsuspend", h.UnsuspendAdminArtifact)
	authorized.POST("/artifacts/:id/rescore", h.RescoreAdminArtifact)

	// 分享事件
	authorized.GET("/share-events", h.GetAdminShareEvents)
	authorized.GET("/share-events/:id", h.GetAdminShareEvent)

	// 推荐关系
	authorized.GET("/referrals", h.GetAdminReferrals)
	authorized.GET("/referrals/:id", h.GetAdminReferral)

	// 佣金台账
	authorized.GET("/commissions", h.GetAdminCommissions)
	authorized.GET("/commissions/:id", h.GetAdminCommission)
	authorized.POST("/commissions/:id/paid", h.MarkAdminCommissionPaid)
	authorized.POST("/commissions/:id/reject", h.RejectAdminCommission)
	authorized.POST("/commissions/confirm-due", h.ConfirmDueAdminCommissions)

	// 展示位
	authorized.GET("/showcase", h.GetAdminShowcase)
	authorized.POST("/showcase/refresh", h.RefreshAdminShowcase)

	// 登录日志
	authorized.GET("/admin-login-logs", h.GetAdminLoginLogs)

	// 设置
	authorized.GET("/settings", h.GetSettings)
	authorized.PUT("/settings", h.UpdateSettings)
	authorized.GET("/settings/growth", h.GetGrowthSettings)
	authorized.PUT("/settings/growth", h.UpdateGrowthSettings)
	authorized.GET("/settings/commission", h.GetCommissionSettings)
	authorized.PUT("/settings/commission", h.UpdateCommissionSettings)
	authorized.GET("/settings/showcase", h.GetShowcaseSettings)
	authorized.PUT("/settings/showcase", h.UpdateShowcaseSettings)
	authorized.GET("/settings/dashboard", h.GetDashboardSettings)
	authorized.PUT("/settings/dashboard", h.UpdateDashboardSettings)
	authorized.GET("/settings/captcha", h.GetCaptchaSettings)
	authorized.PUT("/settings/captcha", h.UpdateCaptchaSettings)
	authorized.PUT("/password", h.UpdateAdminPassword)

	// 权限
	authorized.GET("/authz/me", h.GetAuthzMe)
	authorized.GET("/authz/roles", h.ListAuthzRoles)
	authorized.POST("/authz/roles", h.CreateAuthzRole)
	authorized.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
	authorized.GET("/authz/roles/:role/policies", h.GetAuthzRolePolicies)
	authorized.POST("/authz/policies", h.GrantAuthzPolicy)
	authorized.DELETE("/authz/policies", h.RevokeAuthzPolicy)
	authorized.GET("/authz/admins", h.ListAuthzAdmins)
	authorized.POST("/authz/admins", h.CreateAuthzAdmin)
	authorized.PUT("/authz/admins/:id", h.UpdateAuthzAdmin)
	authorized.DELETE("/authz/admins/:id", h.DeleteAuthzAdmin)
	authorized.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	authorized.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	authorized.GET("/authz/audit-logs", h.ListAuthzAuditLogs)
	authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
		response.Success(ctx, buildAdminPermissionCatalog(engine))
	})
}

// adminLoginRateRule 管理端登录按 IP+用户名限流
func adminLoginRateRule(cfg *config.Config) RateLimitRule {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "swg"
	}
	return RateLimitRule{
		Prefix:        prefix + ":rate:admin_login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 扫描已注册路由，生成控制台可勾选的授权清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	items := []adminPermissionCatalogItem{}
	if engine == nil {
		return items
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		item, ok := catalogItem(route)
		if !ok {
			continue
		}
		if _, dup := seen[item.Permission]; dup {
			continue
		}
		seen[item.Permission] = struct{}{}
		items = append(items, item)
	}

	sortPermissionCatalog(items)
	return items
}

func catalogItem(route gin.RouteInfo) (adminPermissionCatalogItem, bool) {
	method := strings.ToUpper(strings.TrimSpace(route.Method))
	if !catalogRoute(method, route.Path) {
		return adminPermissionCatalogItem{}, false
	}
	object := authz.NormalizeObject(route.Path)
	return adminPermissionCatalogItem{
		Module:     permissionModule(object),
		Method:     method,
		Object:     object,
		Permission: method + ":" + object,
	}, true
}

func sortPermissionCatalog(items []adminPermissionCatalogItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Module != b.Module:
			return a.Module < b.Module
		case a.Object != b.Object:
			return a.Object < b.Object
		default:
			return a.Method < b.Method
		}
	})
}

// catalogRoute 只收需要授权的管理端路由，登录与预检除外
func catalogRoute(method, path string) bool {
	if method == "" || method == "OPTIONS" || method == "HEAD" {
		return false
	}
	if !strings.HasPrefix(path, "/api/v1/admin/") {
		return false
	}
	return path != "/api/v1/admin/login"
}

// permissionModule 从授权对象推导所属模块，供控制台分组展示
func permissionModule(object string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if trimmed == "" {
		return "system"
	}
	segments := strings.Split(trimmed, "/")
	switch {
	case len(segments) == 1, segments[0] != "admin":
		return segments[0]
	case segments[1] == "authz":
		return "authz"
	default:
		return segments[1]
	}
}
