package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

const epsilon = 0.0001

func TestCalculateSizing(t *testing.T) {
	// account 100000, risk 1%, entry 100, stop 97, confidence 0.8
	// → risk_amount 1000, stop_distance 3, base 333.33, adjusted 266.67,
	//   position_value floor(266.67 × 100) = 26667
	sizing, err := CalculateSizing("AAPL", 100000, 1, 100, 97, 0.8, 25000)
	if err != nil {
		t.Fatalf("CalculateSizing() error = %v", err)
	}

	if math.Abs(sizing.RiskAmount-1000) > epsilon {
		t.Errorf("RiskAmount = %v, want 1000", sizing.RiskAmount)
	}
	if math.Abs(sizing.StopDistance-3) > epsilon {
		t.Errorf("StopDistance = %v, want 3", sizing.StopDistance)
	}
	if math.Abs(sizing.BaseShares-333.3333) > 0.001 {
		t.Errorf("BaseShares = %v, want 333.33", sizing.BaseShares)
	}
	if math.Abs(sizing.AdjustedShares-266.67) > epsilon {
		t.Errorf("AdjustedShares = %v, want 266.67", sizing.AdjustedShares)
	}
	if sizing.PositionValue != 26667 {
		t.Errorf("PositionValue = %v, want 26667", sizing.PositionValue)
	}
	// 상한 25000 적용
	if sizing.PositionSize != 25000 {
		t.Errorf("PositionSize = %v, want 25000 (capped)", sizing.PositionSize)
	}
}

func TestCalculateSizing_UnderCap(t *testing.T) {
	sizing, err := CalculateSizing("AAPL", 100000, 1, 100, 97, 0.8, 50000)
	if err != nil {
		t.Fatalf("CalculateSizing() error = %v", err)
	}
	if sizing.PositionSize != 26667 {
		t.Errorf("PositionSize = %v, want 26667 (uncapped)", sizing.PositionSize)
	}
}

func TestCalculateSizing_InvalidStopLoss(t *testing.T) {
	tests := []struct {
		name     string
		entry    float64
		stopLoss float64
	}{
		{name: "stop equals entry", entry: 100, stopLoss: 100},
		{name: "zero stop", entry: 100, stopLoss: 0},
		{name: "negative stop", entry: 100, stopLoss: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateSizing("AAPL", 100000, 1, tt.entry, tt.stopLoss, 0.8, 25000)
			if err == nil {
				t.Fatal("CalculateSizing() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidStopLoss) {
				t.Errorf("error = %v, want ErrInvalidStopLoss", err)
			}
		})
	}
}

func TestCalculateSizing_NonNegative(t *testing.T) {
	// confidence 0이면 포지션도 0
	sizing, err := CalculateSizing("AAPL", 100000, 1, 100, 97, 0, 25000)
	if err != nil {
		t.Fatalf("CalculateSizing() error = %v", err)
	}
	if sizing.PositionSize != 0 {
		t.Errorf("PositionSize = %v, want 0", sizing.PositionSize)
	}
}

func TestCalculateRiskScore(t *testing.T) {
	tests := []struct {
		name         string
		volatility   float64
		correlation  float64
		entryPrice   float64
		stopDistance float64
		timeframe    contracts.Timeframe
		want         float64
	}{
		{
			// 0.2 + 0.5*0.3 + min(3/100, 0.2) + 0.10 = 0.48
			name:       "moderate inputs",
			volatility: 0.2, correlation: 0.5,
			entryPrice: 100, stopDistance: 3,
			timeframe: contracts.Timeframe5m,
			want:      0.48,
		},
		{
			// 변동성 상한 0.4 적용: 0.4 + 0.3 + 0.2 + 0.10 = 1.0
			name:       "all terms capped",
			volatility: 0.9, correlation: 1.0,
			entryPrice: 100, stopDistance: 50,
			timeframe: contracts.Timeframe5m,
			want:      1.0,
		},
		{
			// 0 + 0 + min(1/100, 0.2) + 0.02 = 0.03
			name:       "minimal risk",
			volatility: 0, correlation: 0,
			entryPrice: 100, stopDistance: 1,
			timeframe: contracts.Timeframe1d,
			want:      0.03,
		},
		{
			// 알 수 없는 타임프레임은 0.05
			name:       "unknown timeframe default",
			volatility: 0, correlation: 0,
			entryPrice: 100, stopDistance: 0,
			timeframe: contracts.Timeframe("2w"),
			want:      0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRiskScore(tt.volatility, tt.correlation, tt.entryPrice, tt.stopDistance, tt.timeframe)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("CalculateRiskScore() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("CalculateRiskScore() = %v, outside [0,1]", got)
			}
		})
	}
}

func TestCalculateProfitProjection(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{confidence: 0, want: 3.0},
		{confidence: 0.5, want: 5.0},
		{confidence: 0.8, want: 6.2},
		{confidence: 1.0, want: 7.0},
	}

	for _, tt := range tests {
		got := CalculateProfitProjection(tt.confidence)
		if math.Abs(got-tt.want) > epsilon {
			t.Errorf("CalculateProfitProjection(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestProfitTarget(t *testing.T) {
	// 시그널이 목표가를 주면 그대로 사용
	withTarget := &contracts.Signal{PriceTarget: 110}
	if got := ProfitTarget(withTarget, 100, 5.0); got != 110 {
		t.Errorf("ProfitTarget() with explicit target = %v, want 110", got)
	}

	// 없으면 projection 밴드에서 유도: 100 * 1.05 = 105
	withoutTarget := &contracts.Signal{}
	if got := ProfitTarget(withoutTarget, 100, 5.0); math.Abs(got-105) > epsilon {
		t.Errorf("ProfitTarget() derived = %v, want 105", got)
	}
}
