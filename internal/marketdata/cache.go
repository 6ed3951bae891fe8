package marketdata

import (
	"context"
	"fmt"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
	"github.com/wonny/tradepilot/backend/pkg/redis"
)

// SnapshotCache persists quote snapshots in Redis so API instances and the
// scheduler share one view of the market.
// ⭐ SSOT: 시세 스냅샷 캐시 접근은 여기서만
type SnapshotCache struct {
	cache  *redis.Cache
	logger *logger.Logger
}

// NewSnapshotCache creates a snapshot cache backed by Redis
func NewSnapshotCache(client *redis.Client, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		cache:  redis.NewCache(client, "marketdata"),
		logger: log,
	}
}

// Get returns the cached snapshot for a symbol, or nil when absent
func (c *SnapshotCache) Get(ctx context.Context, symbol string) (*contracts.MarketSnapshot, error) {
	var snap contracts.MarketSnapshot
	found, err := c.cache.Get(ctx, redis.SnapshotKey(symbol), &snap)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &snap, nil
}

// Set stores a snapshot with the short TTL (실시간 시세는 금방 낡음)
func (c *SnapshotCache) Set(ctx context.Context, snap *contracts.MarketSnapshot) error {
	if err := c.cache.Set(ctx, redis.SnapshotKey(snap.Symbol), snap, redis.TTLShort); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// GetAll returns cached snapshots for the given symbols, skipping misses
func (c *SnapshotCache) GetAll(ctx context.Context, symbols []string) (map[string]*contracts.MarketSnapshot, error) {
	out := make(map[string]*contracts.MarketSnapshot, len(symbols))
	for _, symbol := range symbols {
		snap, err := c.Get(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			out[symbol] = snap
		}
	}
	return out, nil
}
