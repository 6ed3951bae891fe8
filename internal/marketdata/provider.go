package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// Provider is the in-process source of truth for current quote snapshots.
// 피드(스트림/폴러/웹 스크레이퍼)가 Update로 밀어넣고, 엔진이 Snapshots로 읽음.
// ⭐ SSOT: 최신 시세 조회는 이 Provider에서만
type Provider struct {
	mu        sync.RWMutex
	snapshots map[string]*contracts.MarketSnapshot

	cache  *SnapshotCache // nil이면 메모리 전용
	ttl    time.Duration
	logger *logger.Logger
}

// NewProvider creates a snapshot provider.
// cache가 nil이 아니면 Redis에도 기록해 프로세스 간 공유
func NewProvider(cache *SnapshotCache, ttl time.Duration, log *logger.Logger) *Provider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Provider{
		snapshots: make(map[string]*contracts.MarketSnapshot),
		cache:     cache,
		ttl:       ttl,
		logger:    log,
	}
}

// Update records a fresh snapshot from any feed
func (p *Provider) Update(ctx context.Context, snap *contracts.MarketSnapshot) {
	if snap == nil || snap.Symbol == "" {
		return
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}

	p.mu.Lock()
	p.snapshots[snap.Symbol] = snap
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.Set(ctx, snap); err != nil {
			p.logger.WithError(err).WithField("symbol", snap.Symbol).
				Warn("Failed to write snapshot to cache")
		}
	}
}

// Snapshots returns the current snapshot map for the given symbols.
// 메모리에 없거나 낡은 심볼은 Redis 캐시에서 보충. TTL을 넘긴 스냅샷은 제외
// (빠진 심볼은 엔진이 MissingMarketData로 처리함).
func (p *Provider) Snapshots(ctx context.Context, symbols []string) map[string]*contracts.MarketSnapshot {
	now := time.Now()
	out := make(map[string]*contracts.MarketSnapshot, len(symbols))

	p.mu.RLock()
	for _, symbol := range symbols {
		if snap, exists := p.snapshots[symbol]; exists && !snap.IsStale(p.ttl, now) {
			out[symbol] = snap
		}
	}
	p.mu.RUnlock()

	if p.cache == nil {
		return out
	}

	for _, symbol := range symbols {
		if _, exists := out[symbol]; exists {
			continue
		}
		snap, err := p.cache.Get(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).
				Warn("Failed to read snapshot from cache")
			continue
		}
		if snap != nil && !snap.IsStale(p.ttl, now) {
			out[symbol] = snap
		}
	}
	return out
}

// TrackedSymbols returns every symbol with an in-memory snapshot
func (p *Provider) TrackedSymbols() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	symbols := make([]string, 0, len(p.snapshots))
	for symbol := range p.snapshots {
		symbols = append(symbols, symbol)
	}
	return symbols
}
