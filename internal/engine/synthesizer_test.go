package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

func TestClassifySensitivity(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		timeframe  contracts.Timeframe
		want       contracts.TimeSensitivity
	}{
		// confidence > 0.85 AND 단기 → high
		{name: "high confidence 5m", confidence: 0.9, timeframe: contracts.Timeframe5m, want: contracts.SensitivityHigh},
		{name: "high confidence 15m", confidence: 0.86, timeframe: contracts.Timeframe15m, want: contracts.SensitivityHigh},
		// confidence < 0.70 OR 1d → low
		{name: "low confidence", confidence: 0.5, timeframe: contracts.Timeframe5m, want: contracts.SensitivityLow},
		{name: "daily timeframe", confidence: 0.95, timeframe: contracts.Timeframe1d, want: contracts.SensitivityLow},
		// 그 외 → medium
		{name: "high confidence 1h", confidence: 0.9, timeframe: contracts.Timeframe1h, want: contracts.SensitivityMedium},
		{name: "mid confidence 15m", confidence: 0.75, timeframe: contracts.Timeframe15m, want: contracts.SensitivityMedium},
		// 경계값: 0.85는 high 조건에 미달, 0.70은 low 조건에 미달
		{name: "boundary 0.85", confidence: 0.85, timeframe: contracts.Timeframe5m, want: contracts.SensitivityMedium},
		{name: "boundary 0.70", confidence: 0.70, timeframe: contracts.Timeframe1h, want: contracts.SensitivityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := &contracts.Signal{Confidence: tt.confidence, Timeframe: tt.timeframe}
			if got := classifySensitivity(signal); got != tt.want {
				t.Errorf("classifySensitivity() = %s, want %s", got, tt.want)
			}
		})
	}
}

func synthesizerFixture() (*AggregatedSignal, *contracts.MarketSnapshot, *Sizing, *contracts.AutoTradingConfig) {
	best := &contracts.Signal{
		ID:         "sig-001",
		Symbol:     "AAPL",
		Type:       contracts.SignalBuy,
		Strategy:   "momentum_breakout",
		Confidence: 0.8,
		StopLoss:   97,
		Timeframe:  contracts.Timeframe1h,
		CreatedAt:  time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
	agg := &AggregatedSignal{
		Symbol:       "AAPL",
		Best:         best,
		Contributing: []*contracts.Signal{best},
	}
	snap := &contracts.MarketSnapshot{
		Symbol: "AAPL", Price: 100, Change: 1.5, ChangePercent: 1.52,
		Volume: 2000000, High: 101, Low: 98, CompanyName: "Apple Inc.",
	}
	sizing := &Sizing{StopDistance: 3, AdjustedShares: 266.67, PositionSize: 25000}
	config := &contracts.AutoTradingConfig{Enabled: true, MaxPositionSize: 25000, RiskPerTrade: 1}
	return agg, snap, sizing, config
}

func TestSynthesize(t *testing.T) {
	agg, snap, sizing, config := synthesizerFixture()

	c := Synthesize(agg, snap, sizing, 0.42, 6.2, config)

	if c.Symbol != "AAPL" || c.CompanyName != "Apple Inc." {
		t.Errorf("identity fields = %s/%s", c.Symbol, c.CompanyName)
	}
	if c.PositionSize != 25000 {
		t.Errorf("PositionSize = %v, want 25000", c.PositionSize)
	}
	if math.Abs(c.EntryTarget-99.8) > epsilon {
		t.Errorf("EntryTarget = %v, want 99.8 (0.2%% discount)", c.EntryTarget)
	}
	if c.StopLoss != 97 {
		t.Errorf("StopLoss = %v, want 97", c.StopLoss)
	}
	// 목표가 없으면 projection 밴드에서 유도: 100 × 1.062
	if math.Abs(c.ProfitTarget-106.2) > epsilon {
		t.Errorf("ProfitTarget = %v, want 106.2", c.ProfitTarget)
	}
	if c.AutomationStatus != contracts.AutomationAuto {
		t.Errorf("AutomationStatus = %s, want auto", c.AutomationStatus)
	}
	if c.TimeSensitivity != contracts.SensitivityMedium {
		t.Errorf("TimeSensitivity = %s, want medium", c.TimeSensitivity)
	}
	// CreatedAt은 시그널에서 passthrough (재생성 금지)
	if !c.CreatedAt.Equal(agg.Best.CreatedAt) {
		t.Errorf("CreatedAt = %v, want signal CreatedAt %v", c.CreatedAt, agg.Best.CreatedAt)
	}
	if !reflect.DeepEqual(c.SignalIDs, []string{"sig-001"}) {
		t.Errorf("SignalIDs = %v, want [sig-001]", c.SignalIDs)
	}
}

func TestSynthesize_Idempotent(t *testing.T) {
	agg, snap, sizing, config := synthesizerFixture()

	first := Synthesize(agg, snap, sizing, 0.42, 6.2, config)
	second := Synthesize(agg, snap, sizing, 0.42, 6.2, config)

	if !reflect.DeepEqual(first, second) {
		t.Error("Synthesize() on identical inputs must yield identical candidates")
	}
}

func TestSynthesize_DisabledConfigPauses(t *testing.T) {
	agg, snap, sizing, config := synthesizerFixture()
	config.Enabled = false

	c := Synthesize(agg, snap, sizing, 0.42, 6.2, config)
	if c.AutomationStatus != contracts.AutomationPaused {
		t.Errorf("AutomationStatus = %s, want paused", c.AutomationStatus)
	}
}
