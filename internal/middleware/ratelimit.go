package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter 判断某个键当前是否放行
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware 按客户端 IP 限流，限流器自身出错时放行
func RateLimitMiddleware(limiter Limiter) app.HandlerFunc {
	m := newLimiterMetrics()
	return func(ctx context.Context, c *app.RequestContext) {
		ip := mycontext.ClientIP(c)
		path := string(c.Path())

		allowed, err := limiter.Allow(ctx, ip)
		if err != nil {
			logger.Error(ctx, "rate limiter evaluation failed", zap.Error(err), zap.String("ip", ip))
			m.record(ctx, m.errors, path, false)
			c.Next(ctx)
			return
		}
		m.record(ctx, m.requests, path, !allowed)
		if !allowed {
			logger.Warn(ctx, "Request blocked by rate limiter", zap.String("ip", ip))
			m.record(ctx, m.blocked, path, true)
			abort(ctx, c, errcode.TooManyRequests)
			return
		}
		c.Next(ctx)
	}
}

type limiterMetrics struct {
	requests metric.Int64Counter
	blocked  metric.Int64Counter
	errors   metric.Int64Counter
}

// newLimiterMetrics 未配置 MeterProvider 时 otel 返回空实现
func newLimiterMetrics() *limiterMetrics {
	meter := otel.GetMeterProvider().Meter("gsms/ratelimit")
	m := &limiterMetrics{}
	var err error
	if m.requests, err = meter.Int64Counter("rate_limiter.requests", metric.WithDescription("Total number of requests")); err != nil {
		logger.Error(context.Background(), "Failed to create request counter", zap.Error(err))
	}
	if m.blocked, err = meter.Int64Counter("rate_limiter.blocked", metric.WithDescription("Total number of blocked requests")); err != nil {
		logger.Error(context.Background(), "Failed to create blocked counter", zap.Error(err))
	}
	if m.errors, err = meter.Int64Counter("rate_limiter.errors", metric.WithDescription("Total number of limiter errors")); err != nil {
		logger.Error(context.Background(), "Failed to create error counter", zap.Error(err))
	}
	return m
}

func (m *limiterMetrics) record(ctx context.Context, counter metric.Int64Counter, path string, blocked bool) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.Bool("blocked", blocked),
	))
}

// MemoryLimiter 单实例内存令牌桶，每个键一个 rate.Limiter
type MemoryLimiter struct {
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter expiry 内未出现的键会被 Sweep 清理
func NewMemoryLimiter(qps float64, burst int, expiry time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   rate.Limit(qps),
		burst:   burst,
		expiry:  expiry,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// Sweep 清理过期的键，返回清理数量
func (m *MemoryLimiter) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, e := range m.entries {
		if now.Sub(e.lastSeen) > m.expiry {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

// Run 定期 Sweep，直到 ctx 结束
func (m *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug(ctx, "rate limiter swept", zap.Int("keys", n))
			}
		}
	}
}

// tokenBucketScript 返回 1 放行，0 拒绝
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)
local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', key, math.ceil(capacity / rate * 2000))
return allowed
`)

// RedisLimiter 多实例共享的令牌桶
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	qps    float64
	burst  int
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, qps float64, burst int) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix + "ratelimit:", qps: qps, burst: burst, now: time.Now}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(r.now().UnixMicro()) / 1e6
	allowed, err := tokenBucketScript.Run(ctx, r.client, []string{r.prefix + key}, r.qps, r.burst, now).Int64()
	if err != nil {
		return false, errors.Wrap(err, "run token bucket script")
	}
	return allowed == 1, nil
}
