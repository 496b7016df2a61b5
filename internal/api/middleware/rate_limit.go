package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"recipe-finder/internal/pkg/common"
)

// 閒置超過此時間的用戶端限流器會被移除
const limiterIdleTTL = 10 * time.Minute

// NewLimiter 每個 window 允許 requests 次請求，突發上限同為 requests
func NewLimiter(requests int, window time.Duration) *rate.Limiter {
	every := window / time.Duration(requests)
	return rate.NewLimiter(rate.Every(every), requests)
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 每個用戶端 IP 各自一個令牌桶
type RateLimiter struct {
	requests int
	window   time.Duration
	idleTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	lastScan time.Time
}

// NewRateLimiter 創建依 IP 限流的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	idleTTL := limiterIdleTTL
	if window > idleTTL {
		idleTTL = window
	}
	return &RateLimiter{
		requests: requests,
		window:   window,
		idleTTL:  idleTTL,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

// Allow 該 IP 是否還有配額
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	now := rl.now()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: NewLimiter(rl.requests, rl.window)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = now

	// 順便清除閒置的限流器
	if now.Sub(rl.lastScan) > rl.idleTTL {
		for k, e := range rl.limiters {
			if now.Sub(e.lastAccess) > rl.idleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastScan = now
	}
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Len 目前追蹤的用戶端數量
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware 限流中間件
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := int(math.Ceil(rl.window.Seconds() / float64(rl.requests)))
	if retryAfter < 1 {
		retryAfter = 1
	}

	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.Response(false))
			return
		}

		c.Next()
	}
}

// RateLimit 依 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewRateLimiter(requests, window).Middleware()
}
