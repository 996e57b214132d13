package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
	"github.com/xiebiao/bigbooks/pkg/metrics"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// RateLimiter 令牌桶限流
// 已登录按账户限流,未登录按客户端IP限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Handler 限流中间件,放在RequireAuth之后时按账户计数
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetIdentity(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(key) {
			metrics.InitMetrics()
			metrics.RateLimitedTotal.Inc()
			response.Error(c, apperrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Allow 消耗一个令牌
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	v, ok := l.limiters[key]
	if !ok {
		// 先清理再插入,新条目不能被本轮清理掉
		l.cleanup(now)
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst), lastSeen: now}
		l.limiters[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// cleanup 清理长时间未访问的条目,调用方持有锁
func (l *RateLimiter) cleanup(now time.Time) {
	for k, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
}
