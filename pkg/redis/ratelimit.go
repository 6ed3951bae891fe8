package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig names one shared request quota.
type RateLimitConfig struct {
	Key    string        // quota 식별자 (예: "feed", "webquote")
	Limit  int           // window당 허용 요청 수
	Window time.Duration
}

// Shared quotas for the external quote sources.
var (
	// REST 시세 API: 초당 10회
	FeedRateLimit = RateLimitConfig{Key: "feed", Limit: 10, Window: time.Second}

	// HTML 시세 페이지 스크래핑: 초당 2회 (보수적)
	WebQuoteRateLimit = RateLimitConfig{Key: "webquote", Limit: 2, Window: time.Second}
)

// slidingWindow atomically prunes the window, counts, and admits.
// sorted set의 score/member 모두 요청 시각(ms)
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, now)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	end
	return {0, 0}
`)

// retryInterval paces Wait polling between admission attempts.
const retryInterval = 100 * time.Millisecond

// RateLimiter enforces sliding-window quotas shared across processes.
// ⭐ SSOT: 외부 API quota 관리는 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// NewRateLimiter creates a limiter namespaced under prefix
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix}
}

// Allow admits the request if quota remains. Returns (allowed, remaining).
// Redis가 꺼져 있으면 전부 허용 (단일 프로세스 가정)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now().UnixMilli()

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now,
		now-cfg.Window.Milliseconds(),
		cfg.Limit,
		cfg.Window.Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed := result[0].(int64) == 1
	remaining := int(result[1].(int64))
	return allowed, remaining, nil
}

// Wait blocks until the quota admits the request or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
