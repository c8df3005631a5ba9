package middleware

import (
	"net/http"
	"sync"
	"time"

	"MatchServer/consts"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterTTL 空闲限流器的回收时间。
const limiterTTL = 10 * time.Minute

// ipLimiter 单个 IP 的令牌桶与最后活跃时间。
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 进程内 IP 级令牌桶限流器。
// 每个来源 IP 一个独立令牌桶，空闲桶定期回收防止 map 无限增长。
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter 创建限流器。
// r: 每秒产生的令牌数；burst: 令牌桶容量。
func NewRateLimiter(r float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(r),
		burst:    burst,
	}
	go rl.cleanupLoop()
	return rl
}

// Allow 判断来源 IP 的本次请求是否放行。
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// cleanupLoop 周期性回收长时间不活跃的 IP 桶。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterTTL)
		rl.mu.Lock()
		for ip, entry := range rl.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware IP 级限流中间件。
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": consts.GetMessage(consts.CodeTooManyRequests),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
