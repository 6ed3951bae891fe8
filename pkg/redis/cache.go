package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL tiers for cached values.
const (
	TTLShort  = 1 * time.Minute  // 실시간 시세 스냅샷
	TTLMedium = 10 * time.Minute // 심볼 메타데이터
	TTLLong   = 1 * time.Hour    // 후보 생성 결과
	TTLDaily  = 24 * time.Hour   // 일별 데이터
)

// Cache stores JSON-encoded values under a namespaced key prefix.
// Redis가 꺼져 있으면 모든 연산은 cache miss로 동작한다.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a cache helper namespaced under prefix
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get unmarshals the cached value into dest. Returns false on miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value as JSON with the given TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes the cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Cache key builders shared across packages.
func SnapshotKey(symbol string) string {
	return "snapshot:" + symbol
}

func CandidateRunKey(runID string) string {
	return "candidates:run:" + runID
}

func SymbolInfoKey(symbol string) string {
	return "symbol:info:" + symbol
}
