package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2, time.Minute))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)

	w := serve(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func serveFrom(r *gin.Engine, remoteAddr, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.1:1234", http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(r, "10.0.0.1:1234", http.MethodGet, "/ping", "").Code)

	// 其他用戶端不受影響
	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.2:5678", http.MethodGet, "/ping", "").Code)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())

	now = now.Add(limiterIdleTTL + time.Second)
	assert.True(t, rl.Allow("10.0.0.3"))
	assert.Equal(t, 1, rl.Len())
}

func TestDeduplicationPerClient(t *testing.T) {
	r := newEngine(NewDeduplicator(time.Second).Middleware())

	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.1:1234", http.MethodPost, "/echo", `{"a":1}`).Code)
	assert.Equal(t, http.StatusOK, serveFrom(r, "10.0.0.2:5678", http.MethodPost, "/echo", `{"a":1}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(r, "10.0.0.1:1234", http.MethodPost, "/echo", `{"a":1}`).Code)
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	r := newEngine(d.Middleware())

	w := serve(r, http.MethodPost, "/echo", `{"a":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"a":1}`, w.Body.String())

	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/echo", `{"a":1}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", `{"a":2}`).Code)

	// GET 不受影響
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", `{"a":1}`).Code)
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", "small").Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/echo", "much too large").Code)

	// 沒有 Content-Length 時由讀取端截斷
	req := httptest.NewRequest(http.MethodPost, "/echo", io.MultiReader(bytes.NewReader([]byte("0123456789"))))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery())

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_TIMEOUT")
}
