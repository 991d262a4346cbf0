package middleware

import (
	"sync"
	"time"

	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiterEntry 单个客户端的限流器
type ipLimiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// ipRateLimiter 按客户端IP限流，超过TTL未访问的记录定期清理
type ipRateLimiter struct {
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	entries   map[string]*ipLimiterEntry
	lastSweep time.Time
}

func newIPRateLimiter(perSecond float64, burst int, ttl time.Duration) *ipRateLimiter {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ipRateLimiter{
		rate:    rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*ipLimiterEntry),
	}
}

// Allow 判断该IP的本次访问是否放行
func (l *ipRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > l.ttl {
		l.sweepLocked(now)
		l.lastSweep = now
	}

	entry := l.entries[ip]
	if entry == nil {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[ip] = entry
	}
	entry.last = now
	return entry.limiter.Allow()
}

func (l *ipRateLimiter) sweepLocked(now time.Time) {
	for ip, entry := range l.entries {
		if now.Sub(entry.last) > l.ttl {
			delete(l.entries, ip)
		}
	}
}

// LoginRateLimitMiddleware 登录接口限流中间件，防止口令暴力破解
// perMinute为每个IP每分钟允许的尝试次数
func LoginRateLimitMiddleware(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}

	limiter := newIPRateLimiter(float64(perMinute)/60, burst, 5*time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.Error(c, 429, "登录尝试过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
