package engine

import (
	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// =============================================================================
// Signal Aggregator - 심볼별 최적 매수 시그널 선택
// =============================================================================

// AggregatedSignal pairs the best actionable signal for a symbol with
// every signal that contributed to the group.
// ⭐ SSOT: 후보는 매수 시그널에서만 생성됨 (매도/보유 시그널은 후보를 만들지 않음)
type AggregatedSignal struct {
	Symbol       string
	Best         *contracts.Signal
	Contributing []*contracts.Signal // 약한 참조 기반 (Candidate.SignalIDs로 직렬화)
}

// Aggregate groups signals by symbol and selects the highest-confidence buy
// signal per symbol. Symbols with no buy signal produce no entry. Ties on
// confidence are broken by the most recent CreatedAt.
// 순수 함수, O(n); 입력 순서가 같으면 출력 순서도 같음
func Aggregate(signals []*contracts.Signal) []AggregatedSignal {
	groups := make(map[string]*AggregatedSignal)
	order := make([]string, 0, len(signals))

	for _, sig := range signals {
		if sig == nil || sig.Symbol == "" {
			continue
		}

		group, exists := groups[sig.Symbol]
		if !exists {
			group = &AggregatedSignal{Symbol: sig.Symbol}
			groups[sig.Symbol] = group
			order = append(order, sig.Symbol)
		}
		group.Contributing = append(group.Contributing, sig)

		if !sig.IsBuy() {
			continue
		}
		if group.Best == nil || betterBuySignal(sig, group.Best) {
			group.Best = sig
		}
	}

	// 매수 시그널이 하나도 없는 심볼은 제외
	result := make([]AggregatedSignal, 0, len(order))
	for _, symbol := range order {
		group := groups[symbol]
		if group.Best == nil {
			continue
		}
		result = append(result, *group)
	}

	return result
}

// betterBuySignal reports whether a should replace b as the best buy signal
func betterBuySignal(a, b *contracts.Signal) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// SignalIDs extracts the contributing signal IDs for weak referencing.
// ID가 없는 시그널은 참조에서 생략
func (a *AggregatedSignal) SignalIDs() []string {
	ids := make([]string, 0, len(a.Contributing))
	for _, sig := range a.Contributing {
		if sig.ID != "" {
			ids = append(ids, sig.ID)
		}
	}
	return ids
}
