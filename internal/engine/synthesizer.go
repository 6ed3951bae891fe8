package engine

import (
	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// =============================================================================
// Candidate Synthesizer - 시그널 + 시세 + 사이징 병합
// =============================================================================

// 진입 목표가 할인율: 마지막 체결가보다 약간 낮춰 passive fill 유도
const entryDiscount = 0.998

// Synthesize merges an aggregated signal, its resolved snapshot, and the
// sizing outputs into a single Candidate. Idempotent: identical inputs yield
// an identical Candidate (CreatedAt is passed through from the best signal,
// never regenerated).
func Synthesize(agg *AggregatedSignal, snap *contracts.MarketSnapshot, sizing *Sizing, riskScore, profitProjection float64, config *contracts.AutoTradingConfig) *contracts.Candidate {
	best := agg.Best
	entryPrice := snap.Price

	return &contracts.Candidate{
		Symbol:      agg.Symbol,
		CompanyName: snap.CompanyName,

		Price:         snap.Price,
		Change:        snap.Change,
		ChangePercent: snap.ChangePercent,
		Volume:        snap.Volume,
		High:          snap.High,
		Low:           snap.Low,
		Estimated:     snap.Estimated,

		ProfitProjection: profitProjection,
		ProfitConfidence: best.Confidence,
		PositionSize:     sizing.PositionSize,
		PositionShares:   sizing.AdjustedShares,
		RiskScore:        riskScore,
		SignalStrength:   best.Confidence,
		Strategy:         best.Strategy,

		AutomationStatus: config.InitialStatus(),
		TimeSensitivity:  classifySensitivity(best),

		EntryTarget:  entryPrice * entryDiscount,
		StopLoss:     best.StopLoss,
		ProfitTarget: ProfitTarget(best, entryPrice, profitProjection),

		SignalIDs: agg.SignalIDs(),
		CreatedAt: best.CreatedAt,
	}
}

// classifySensitivity applies the urgency decision table, top-down,
// first match wins:
//
//	confidence > 0.85 AND 단기 타임프레임 → high
//	confidence < 0.70 OR 1d → low
//	그 외 → medium
func classifySensitivity(signal *contracts.Signal) contracts.TimeSensitivity {
	switch {
	case signal.Confidence > 0.85 && signal.Timeframe.IsIntraday():
		return contracts.SensitivityHigh
	case signal.Confidence < 0.70 || signal.Timeframe == contracts.Timeframe1d:
		return contracts.SensitivityLow
	default:
		return contracts.SensitivityMedium
	}
}
