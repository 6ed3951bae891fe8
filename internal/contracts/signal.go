package contracts

import "time"

// SignalType classifies the action a signal proposes
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

// Timeframe is the holding horizon a signal was computed on
type Timeframe string

const (
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// Signal represents a single strategy assertion about a symbol
// ⭐ SSOT: 시그널 소스 → 엔진 데이터 전달 (엔진은 읽기 전용)
type Signal struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Type        SignalType `json:"type"`
	Strategy    string     `json:"strategy"`
	Confidence  float64    `json:"confidence"` // 0.0 ~ 1.0
	PriceTarget float64    `json:"price_target,omitempty"`
	StopLoss    float64    `json:"stop_loss,omitempty"`
	Timeframe   Timeframe  `json:"timeframe"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsBuy reports whether the signal proposes a long entry
func (s *Signal) IsBuy() bool {
	return s.Type == SignalBuy
}

// HasPriceTarget reports whether the strategy supplied an explicit target
func (s *Signal) HasPriceTarget() bool {
	return s.PriceTarget > 0
}

// HasStopLoss reports whether the strategy supplied an explicit stop
func (s *Signal) HasStopLoss() bool {
	return s.StopLoss > 0
}

// Risk returns the execution/gap risk premium for the holding horizon
// 짧은 보유 기간일수록 변동성과 무관하게 실행 리스크가 큼
func (t Timeframe) Risk() float64 {
	switch t {
	case Timeframe5m:
		return 0.10
	case Timeframe15m:
		return 0.08
	case Timeframe1h:
		return 0.06
	case Timeframe4h:
		return 0.04
	case Timeframe1d:
		return 0.02
	default:
		return 0.05
	}
}

// IsIntraday reports whether the timeframe is a short intraday horizon
func (t Timeframe) IsIntraday() bool {
	return t == Timeframe5m || t == Timeframe15m
}
