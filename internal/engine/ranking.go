package engine

import (
	"sort"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// =============================================================================
// Ranking & Filtering - 정렬 키별 안정 정렬 + 절단
// =============================================================================

// Rank sorts candidates by the given key and truncates to limit.
// profit_projection과 signal_strength는 내림차순, risk_score는 오름차순.
// 안정 정렬: 동점 후보는 입력 순서를 유지함. 입력 슬라이스는 변경하지 않음.
func Rank(candidates []*contracts.Candidate, key contracts.SortKey, limit int) []*contracts.Candidate {
	ranked := make([]*contracts.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		switch key {
		case contracts.SortByRiskScore:
			return ranked[i].RiskScore < ranked[j].RiskScore
		case contracts.SortBySignalStrength:
			return ranked[i].SignalStrength > ranked[j].SignalStrength
		default: // profit_projection
			return ranked[i].ProfitProjection > ranked[j].ProfitProjection
		}
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
