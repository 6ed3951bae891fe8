package engine

import (
	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// =============================================================================
// Market Snapshot Resolver - 심볼 → 시세 스냅샷 매핑
// =============================================================================

// ResolveSnapshot returns the snapshot for a symbol, or deterministically
// synthesizes an estimate from the signal's own price context when the feed
// has no data. Symbols with neither feed data nor signal price context are
// excluded via ErrMissingMarketData.
// ⭐ 임의의 placeholder 가격은 절대 생성하지 않음 (추정치는 Estimated 플래그로 명시)
func ResolveSnapshot(symbol string, snapshots map[string]*contracts.MarketSnapshot, signal *contracts.Signal) (*contracts.MarketSnapshot, error) {
	if snap, exists := snapshots[symbol]; exists && snap != nil && snap.Price > 0 {
		resolved := *snap
		resolved.Symbol = symbol
		// 피드가 high/low를 안 주면 ±2% 추정치로 채움
		resolved.EstimateRange()
		return &resolved, nil
	}

	// 피드 데이터 없음: 시그널의 가격 맥락에서 결정적으로 합성
	price := syntheticPrice(signal)
	if price <= 0 {
		return nil, newSymbolError(symbol, ErrMissingMarketData,
			"no market snapshot and no signal price context")
	}

	synthetic := &contracts.MarketSnapshot{
		Symbol:    symbol,
		Price:     price,
		Estimated: true,
	}
	synthetic.EstimateRange()
	return synthetic, nil
}

// syntheticPrice derives a deterministic price from the signal's own targets.
// 목표가와 손절가가 모두 있으면 중간값, 목표가만 있으면 그 값.
// 손절가만 있는 경우는 합성하지 않음 (진입가==손절가가 되어 사이징 불가)
func syntheticPrice(signal *contracts.Signal) float64 {
	if signal == nil {
		return 0
	}

	switch {
	case signal.HasPriceTarget() && signal.HasStopLoss():
		return (signal.PriceTarget + signal.StopLoss) / 2
	case signal.HasPriceTarget():
		return signal.PriceTarget
	default:
		return 0
	}
}
