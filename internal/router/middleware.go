package router

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sitewave-growth/internal/authz"
	"github.com/sitewave-growth/internal/cache"
	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/i18n"
	"github.com/sitewave-growth/internal/logger"
	"github.com/sitewave-growth/internal/repository"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	requestIDKey           = "request_id"
	requestIDHeader        = "X-Request-ID"
	adminIsSuperContextKey = "admin_is_super"
	serviceNameContextKey  = "service_name"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
		"Cache-Control", "X-Requested-With", "X-CSRF-Token",
	}
)

// abortUnauthorized 返回 401 业务码并终止后续 handler
func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// abortForbidden 返回 403 业务码并终止后续 handler
func abortForbidden(c *gin.Context, key string) {
	response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// bearerToken 提取 Authorization 头中的 Bearer 令牌，失败时返回对应词条
func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "error.auth_header_missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "error.auth_header_invalid"
	}
	return parts[1], ""
}

// CORSMiddleware 跨域中间件，允许列表为空时放行所有来源
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := valuesOrDefault(cfg.AllowedOrigins, []string{"*"})
	methodsHeader := strings.Join(valuesOrDefault(cfg.AllowedMethods, defaultCORSMethods), ", ")
	headersHeader := strings.Join(valuesOrDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")

	return func(c *gin.Context) {
		header := c.Writer.Header()
		origin := c.GetHeader("Origin")
		if allowed := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func valuesOrDefault(values, fallback []string) []string {
	if len(values) > 0 {
		return values
	}
	return fallback
}

// resolveAllowedOrigin 精确匹配优先于通配符；凭据模式下不能返回 *，改为回显来源
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	wildcard := false
	for _, allowed := range allowedOrigins {
		switch {
		case allowed == "*":
			wildcard = true
		case origin != "" && strings.EqualFold(allowed, origin):
			return origin
		}
	}
	switch {
	case !wildcard:
		return ""
	case allowCredentials && origin != "":
		return origin
	default:
		return "*"
	}
}

// RequestIDMiddleware 透传调用方的请求 ID，缺失时现场生成
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 每个请求落一条结构化访问日志
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			sugar.Errorw("request", append(fields, "errors", c.Errors.String())...)
			return
		}
		sugar.Infow("request", fields...)
	}
}

func getRequestID(c *gin.Context) string {
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// JWTAuthMiddleware 管理端 JWT 鉴权中间件
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, errKey := bearerToken(c)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}
		claims, err := parseAdminToken(secretKey, tokenString)
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		isSuper, denyKey := resolveAdminAuth(c, adminRepo, claims)
		if denyKey != "" {
			abortUnauthorized(c, denyKey)
			return
		}
		setAdminContext(c, claims, isSuper)
		c.Next()
	}
}

// resolveAdminAuth 先查鉴权快照缓存，未命中时落库并回填，返回拒绝词条
func resolveAdminAuth(c *gin.Context, adminRepo repository.AdminRepository, claims *service.JWTClaims) (bool, string) {
	if cached, hit, err := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID); err == nil && hit && cached != nil {
		if claims.TokenVersion != cached.TokenVersion || !issuedAtOrAfterUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
			return false, "error.token_revoked"
		}
		if cached.Disabled {
			return false, "error.admin_disabled"
		}
		return cached.IsSuper, ""
	}

	admin, err := adminRepo.GetByID(claims.AdminID)
	if err != nil || admin == nil {
		return false, "error.token_invalid"
	}
	if claims.TokenVersion != admin.TokenVersion || !issuedAtOrAfter(claims.IssuedAt, admin.TokenInvalidBefore) {
		return false, "error.token_revoked"
	}
	if admin.Disabled {
		return false, "error.admin_disabled"
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))
	return admin.IsSuper, ""
}

// parseAdminToken 校验 HS256 签名并拒绝空 AdminID 的令牌
func parseAdminToken(secretKey, tokenString string) (*service.JWTClaims, error) {
	claims := &service.JWTClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.AdminID == 0 {
		return nil, errors.New("invalid admin token")
	}
	return claims, nil
}

func setAdminContext(c *gin.Context, claims *service.JWTClaims, isSuper bool) {
	c.Set("admin_id", claims.AdminID)
	c.Set("username", claims.Username)
	c.Set(adminIsSuperContextKey, isSuper)
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件，超级管理员绕过策略检查
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if contextIsSuper(c) {
			c.Next()
			return
		}
		adminID := contextAdminID(c)
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := enforceObject(c)
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", append(rbacLogFields(c, adminID), "error", err)...)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				append(rbacLogFields(c, adminID), "resource", authz.NormalizeObject(resource))...)
			abortForbidden(c, "error.forbidden")
			return
		}
		c.Next()
	}
}

// enforceObject 用路由模板（/admin/artifacts/:id）做授权对象，未注册路由退回原始路径
func enforceObject(c *gin.Context) string {
	if resource := strings.TrimSpace(c.FullPath()); resource != "" {
		return resource
	}
	return c.Request.URL.Path
}

func rbacLogFields(c *gin.Context, adminID uint) []interface{} {
	return []interface{}{"admin_id", adminID, "method", c.Request.Method, "path", c.Request.URL.Path}
}

func contextIsSuper(c *gin.Context) bool {
	value, ok := c.Get(adminIsSuperContextKey)
	if !ok {
		return false
	}
	isSuper, _ := value.(bool)
	return isSuper
}

func contextAdminID(c *gin.Context) uint {
	value, ok := c.Get("admin_id")
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

// ServiceAuthMiddleware 服务间调用鉴权中间件
// 平台、计费、分析等内部服务携带 HS256 服务令牌访问摄入接口
func ServiceAuthMiddleware(cfg config.ServiceAuthConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedServices))
	for _, name := range cfg.AllowedServices {
		if normalized := strings.ToLower(strings.TrimSpace(name)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if cfg.Secret == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		tokenString, errKey := bearerToken(c)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}

		claims, err := service.ParseServiceToken(cfg.Secret, tokenString)
		if err != nil {
			abortUnauthorized(c, "error.service_token_invalid")
			return
		}
		if !issuedWithinSkew(claims.IssuedAt, cfg.MaxSkewSeconds) {
			abortUnauthorized(c, "error.service_token_invalid")
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[claims.Service]; !ok {
				logger.Warnw("service_auth_caller_rejected",
					"service", claims.Service,
					"path", c.Request.URL.Path,
				)
				abortForbidden(c, "error.forbidden")
				return
			}
		}

		c.Set(serviceNameContextKey, claims.Service)
		c.Next()
	}
}

// issuedWithinSkew 限制服务令牌的签发时间不能早于允许的偏差窗口
func issuedWithinSkew(issuedAt *jwt.NumericDate, maxSkewSeconds int) bool {
	if maxSkewSeconds <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.After(time.Now().Add(-time.Duration(maxSkewSeconds) * time.Second))
}

func issuedAtOrAfter(issuedAt *jwt.NumericDate, invalidBefore *time.Time) bool {
	if invalidBefore == nil {
		return true
	}
	return issuedAtOrAfterUnix(issuedAt, invalidBefore.Unix())
}

// issuedAtOrAfterUnix 拒绝失效时间线之前签发的令牌，零值视为未设置
func issuedAtOrAfterUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}
