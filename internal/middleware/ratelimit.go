package middleware

import (
	"net/http"
	"sync"
	"time"

	"crash-map/internal/config"
	"crash-map/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：区域判定对每次绘制都要扫描全量记录，峰值时对入口限速，避免 CPU 被打满；按配置开关与速率。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() int64
}

func NewTokenBucket(qps int) *TokenBucket {
	now := func() int64 { return time.Now().Unix() }
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: now(), now: now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit 用令牌桶包装处理器
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path, "ip", r.RemoteAddr)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap 按配置决定是否启用限流
func Wrap(next http.Handler, rc config.RateLimitConfig) http.Handler {
	if !rc.Enabled || rc.QPS <= 0 {
		return next
	}
	return Limit(NewTokenBucket(rc.QPS), next)
}
