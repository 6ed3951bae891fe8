package engine

import (
	"math"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// =============================================================================
// Risk & Sizing Calculator - 순수 계산기
// =============================================================================

// 리스크 점수 가중치 상한
const (
	volatilityCap   = 0.4 // 변동성 기여 상한
	correlationWt   = 0.3 // 상관관계 가중치
	stopDistanceCap = 0.2 // 손절 거리 기여 상한
)

// Sizing holds the position sizing outputs for one symbol
type Sizing struct {
	RiskAmount     float64 // 허용 손실 금액
	StopDistance   float64 // |진입가 - 손절가|
	BaseShares     float64
	AdjustedShares float64 // confidence 반영 수량
	PositionValue  float64 // floor(수량 × 진입가), 상한 적용 전
	PositionSize   float64 // 상한 적용 후 최종 금액
}

// CalculateSizing computes risk-normalized position size.
// ⭐ SSOT: 사이징 공식은 여기서만
//
//	risk_amount   = account_value × risk_per_trade / 100
//	stop_distance = |entry - stop|
//	base_shares   = risk_amount / stop_distance
//	position      = min(floor(base × confidence × entry), max_position_size)
//
// stop_distance가 0이면 계약 위반 (ErrInvalidStopLoss), 기본값 대체 금지
func CalculateSizing(symbol string, accountValue, riskPerTrade, entryPrice, stopLoss, confidence, maxPositionSize float64) (*Sizing, error) {
	if entryPrice <= 0 {
		return nil, newSymbolError(symbol, ErrMissingMarketData,
			"entry price must be positive, got %.4f", entryPrice)
	}
	if stopLoss <= 0 {
		return nil, newSymbolError(symbol, ErrInvalidStopLoss,
			"stop loss must be positive, got %.4f", stopLoss)
	}

	stopDistance := math.Abs(entryPrice - stopLoss)
	if stopDistance == 0 {
		return nil, newSymbolError(symbol, ErrInvalidStopLoss,
			"stop loss %.4f equals entry price", stopLoss)
	}

	riskAmount := accountValue * (riskPerTrade / 100)
	baseShares := riskAmount / stopDistance
	// 수량은 소수점 둘째 자리까지 (브로커 fractional share 정밀도)
	adjustedShares := math.Round(baseShares*confidence*100) / 100
	positionValue := math.Floor(adjustedShares * entryPrice)
	positionSize := math.Min(positionValue, maxPositionSize)
	if positionSize < 0 {
		positionSize = 0
	}

	return &Sizing{
		RiskAmount:     riskAmount,
		StopDistance:   stopDistance,
		BaseShares:     baseShares,
		AdjustedShares: adjustedShares,
		PositionValue:  positionValue,
		PositionSize:   positionSize,
	}, nil
}

// CalculateRiskScore computes the weighted risk score, clamped to [0,1].
// 각 항은 합산 전에 개별 상한으로 클램프됨
func CalculateRiskScore(volatility, correlation, entryPrice, stopDistance float64, timeframe contracts.Timeframe) float64 {
	stopDistancePct := 0.0
	if entryPrice > 0 {
		stopDistancePct = stopDistance / entryPrice * 100
	}

	score := math.Min(volatility, volatilityCap) +
		correlation*correlationWt +
		math.Min(stopDistancePct/100, stopDistanceCap) +
		timeframe.Risk()

	return clamp01(score)
}

// CalculateProfitProjection scales confidence linearly into a 3%~7% band.
// 저신뢰 기회를 과장하지 않으면서도 노출시키기 위한 설계
func CalculateProfitProjection(confidence float64) float64 {
	return 3 + confidence*4
}

// ProfitTarget prefers the signal's explicit target, else derives one from
// the projection band
func ProfitTarget(signal *contracts.Signal, entryPrice, profitProjection float64) float64 {
	if signal.HasPriceTarget() {
		return signal.PriceTarget
	}
	return entryPrice * (1 + profitProjection/100)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
