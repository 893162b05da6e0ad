package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// newJSONPostContext 构造带 JSON body 的测试请求上下文
func newJSONPostContext(t *testing.T, body, remoteAddr string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = remoteAddr
	return c
}

func TestRateLimitMiddlewarePassesWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("expected handler to run, status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestKeyByIPAndJSONFieldRestoresBody(t *testing.T) {
	c := newJSONPostContext(t, `{"username":" Ops-Admin "}`, "10.20.0.9:40210")

	if key := KeyByIPAndJSONField("username")(c); key != "ops-admin|10.20.0.9" {
		t.Fatalf("key want ops-admin|10.20.0.9 got %s", key)
	}

	// 限流 key 提取不应吃掉请求体
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Ops-Admin") {
		t.Fatalf("request body not restored: %s", string(body))
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	c := newJSONPostContext(t, `{}`, "172.16.8.40:52144")

	if key := KeyByIPAndJSONField("username")(c); key != "172.16.8.40" {
		t.Fatalf("expected bare IP fallback, got %s", key)
	}
}

func TestParseLimitReply(t *testing.T) {
	hits, ttl, ok := parseLimitReply([]interface{}{int64(3), int64(42)})
	if !ok || hits != 3 || ttl != 42 {
		t.Fatalf("unexpected parse result: hits=%d ttl=%d ok=%v", hits, ttl, ok)
	}

	if _, _, ok := parseLimitReply("garbage"); ok {
		t.Fatalf("expected parse failure for non-slice reply")
	}
	if _, _, ok := parseLimitReply([]interface{}{int64(1)}); ok {
		t.Fatalf("expected parse failure for short reply")
	}
	if _, _, ok := parseLimitReply([]interface{}{"x", int64(1)}); ok {
		t.Fatalf("expected parse failure for non-numeric hits")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	if got := retryAfterSeconds(42, 300); got != 42 {
		t.Fatalf("expected ttl to win, got %d", got)
	}
	if got := retryAfterSeconds(-1, 300); got != 300 {
		t.Fatalf("expected window fallback, got %d", got)
	}
	if got := retryAfterSeconds(0, 0); got != 1 {
		t.Fatalf("expected minimum of 1, got %d", got)
	}
}
