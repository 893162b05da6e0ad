package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{"wildcard", "https://example.com", []string{"*"}, false, "*"},
		{"wildcard_with_credentials", "https://example.com", []string{"*"}, true, "https://example.com"},
		{"allow_list_match", "https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false, "https://a.example.com"},
		{"allow_list_match_ignores_case", "https://A.Example.com", []string{"https://a.example.com"}, false, "https://A.Example.com"},
		{"allow_list_miss", "https://x.example.com", []string{"https://a.example.com"}, false, ""},
		{"no_wildcard_no_origin", "", []string{"https://a.example.com"}, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.allowCredentials); got != tc.want {
				t.Fatalf("resolveAllowedOrigin(%q) = %q, want %q", tc.origin, got, tc.want)
			}
		})
	}
}

func newRequestIDTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})
	return r
}

func TestRequestIDMiddlewarePassthrough(t *testing.T) {
	r := newRequestIDTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("response header want req-123 got %s", got)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("handler saw request id %q, want req-123", resp["request_id"])
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	r := newRequestIDTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if strings.TrimSpace(w.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

// stubAdminRepo 只按 ID 命中内存里的单个管理员
type stubAdminRepo struct {
	admin *models.Admin
}

func (s *stubAdminRepo) GetByUsername(string) (*models.Admin, error) { return nil, nil }
func (s *stubAdminRepo) GetByID(id uint) (*models.Admin, error) {
	if s.admin != nil && s.admin.ID == id {
		return s.admin, nil
	}
	return nil, nil
}
func (s *stubAdminRepo) List() ([]models.Admin, error) { return nil, nil }
func (s *stubAdminRepo) Count() (int64, error)         { return 0, nil }
func (s *stubAdminRepo) Create(*models.Admin) error    { return nil }
func (s *stubAdminRepo) Update(*models.Admin) error    { return nil }
func (s *stubAdminRepo) Delete(uint) error             { return nil }

func signTestAdminToken(t *testing.T, secret string, adminID uint, username string, tokenVersion uint64) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.JWTClaims{
		AdminID:      adminID,
		Username:     username,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign admin token failed: %v", err)
	}
	return signed
}

func serveAdminAuthRequest(t *testing.T, secret string, repo repository.AdminRepository, token string) map[string]interface{} {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(secret, repo))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "admin_id": contextAdminID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func authStatusCode(resp map[string]interface{}) int {
	code, _ := resp["status_code"].(float64)
	return int(code)
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	resp := serveAdminAuthRequest(t, "", nil, "")
	if authStatusCode(resp) != 401 {
		t.Fatalf("status_code want 401 got %v", resp["status_code"])
	}
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	repo := &stubAdminRepo{admin: &models.Admin{ID: 7, Username: "ops", TokenVersion: 3}}
	token := signTestAdminToken(t, "test-secret", 7, "ops", 3)

	resp := serveAdminAuthRequest(t, "test-secret", repo, token)
	if authStatusCode(resp) != 0 {
		t.Fatalf("status_code want 0 got %v", resp["status_code"])
	}
	if adminID, _ := resp["admin_id"].(float64); uint(adminID) != 7 {
		t.Fatalf("admin_id want 7 got %v", resp["admin_id"])
	}
}

func TestJWTAuthMiddlewareRejectsStaleTokenVersion(t *testing.T) {
	repo := &stubAdminRepo{admin: &models.Admin{ID: 7, Username: "ops", TokenVersion: 4}}
	token := signTestAdminToken(t, "test-secret", 7, "ops", 3)

	resp := serveAdminAuthRequest(t, "test-secret", repo, token)
	if authStatusCode(resp) != 401 {
		t.Fatalf("stale token version status_code want 401 got %v", resp["status_code"])
	}
}

func TestJWTAuthMiddlewareRejectsDisabledAdmin(t *testing.T) {
	repo := &stubAdminRepo{admin: &models.Admin{ID: 7, Username: "ops", TokenVersion: 3, Disabled: true}}
	token := signTestAdminToken(t, "test-secret", 7, "ops", 3)

	resp := serveAdminAuthRequest(t, "test-secret", repo, token)
	if authStatusCode(resp) != 401 {
		t.Fatalf("disabled admin status_code want 401 got %v", resp["status_code"])
	}
}

func newServiceAuthTestRouter(cfg config.ServiceAuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ServiceAuthMiddleware(cfg))
	r.POST("/ingest", func(c *gin.Context) {
		caller, _ := c.Get(serviceNameContextKey)
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "caller": caller})
	})
	return r
}

func serveServiceAuthRequest(t *testing.T, r *gin.Engine, token string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return w.Code, resp
}

func TestServiceAuthMiddleware(t *testing.T) {
	cfg := config.ServiceAuthConfig{
		Secret:          "ingest-secret",
		AllowedServices: []string{"platform", "billing"},
	}
	r := newServiceAuthTestRouter(cfg)

	token, err := service.SignServiceToken(cfg.Secret, "billing", time.Minute)
	if err != nil {
		t.Fatalf("sign service token failed: %v", err)
	}
	code, resp := serveServiceAuthRequest(t, r, token)
	if code != http.StatusOK {
		t.Fatalf("status want 200 got %d", code)
	}
	if resp["caller"] != "billing" {
		t.Fatalf("caller want billing got %v", resp["caller"])
	}

	code, resp = serveServiceAuthRequest(t, r, "")
	if code != http.StatusOK {
		t.Fatalf("status want 200 got %d", code)
	}
	if statusCode, _ := resp["status_code"].(float64); int(statusCode) != 401 {
		t.Fatalf("missing token status_code want 401 got %v", resp["status_code"])
	}

	forged, err := service.SignServiceToken("another-secret", "billing", time.Minute)
	if err != nil {
		t.Fatalf("sign forged token failed: %v", err)
	}
	_, resp = serveServiceAuthRequest(t, r, forged)
	if statusCode, _ := resp["status_code"].(float64); int(statusCode) != 401 {
		t.Fatalf("forged token status_code want 401 got %v", resp["status_code"])
	}

	outsider, err := service.SignServiceToken(cfg.Secret, "marketing", time.Minute)
	if err != nil {
		t.Fatalf("sign outsider token failed: %v", err)
	}
	_, resp = serveServiceAuthRequest(t, r, outsider)
	if statusCode, _ := resp["status_code"].(float64); int(statusCode) != 403 {
		t.Fatalf("unlisted caller status_code want 403 got %v", resp["status_code"])
	}
}

func TestServiceAuthMiddlewareWithoutAllowlist(t *testing.T) {
	cfg := config.ServiceAuthConfig{Secret: "ingest-secret"}
	r := newServiceAuthTestRouter(cfg)

	token, err := service.SignServiceToken(cfg.Secret, "analytics", time.Minute)
	if err != nil {
		t.Fatalf("sign service token failed: %v", err)
	}
	code, resp := serveServiceAuthRequest(t, r, token)
	if code != http.StatusOK {
		t.Fatalf("status want 200 got %d", code)
	}
	if resp["caller"] != "analytics" {
		t.Fatalf("caller want analytics got %v", resp["caller"])
	}
}
