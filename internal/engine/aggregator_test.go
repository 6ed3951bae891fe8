package engine

import (
	"testing"
	"time"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

func buySignal(id, symbol string, confidence float64, createdAt time.Time) *contracts.Signal {
	return &contracts.Signal{
		ID:         id,
		Symbol:     symbol,
		Type:       contracts.SignalBuy,
		Confidence: confidence,
		CreatedAt:  createdAt,
	}
}

func TestAggregate_SelectsHighestConfidence(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	signals := []*contracts.Signal{
		buySignal("sig-1", "AAPL", 0.6, base),
		buySignal("sig-2", "AAPL", 0.9, base.Add(time.Minute)),
		buySignal("sig-3", "AAPL", 0.7, base.Add(2*time.Minute)),
	}

	result := Aggregate(signals)
	if len(result) != 1 {
		t.Fatalf("Aggregate() returned %d groups, want 1", len(result))
	}
	if result[0].Best.ID != "sig-2" {
		t.Errorf("Best signal = %s, want sig-2", result[0].Best.ID)
	}
	if len(result[0].Contributing) != 3 {
		t.Errorf("Contributing count = %d, want 3", len(result[0].Contributing))
	}
}

func TestAggregate_ConfidenceTieBrokenByRecency(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	signals := []*contracts.Signal{
		buySignal("older", "TSLA", 0.8, base),
		buySignal("newer", "TSLA", 0.8, base.Add(5*time.Minute)),
	}

	result := Aggregate(signals)
	if len(result) != 1 {
		t.Fatalf("Aggregate() returned %d groups, want 1", len(result))
	}
	if result[0].Best.ID != "newer" {
		t.Errorf("Best signal = %s, want newer (tie broken by recency)", result[0].Best.ID)
	}
}

func TestAggregate_SellHoldOnlyProducesNothing(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	signals := []*contracts.Signal{
		{ID: "s1", Symbol: "META", Type: contracts.SignalSell, Confidence: 0.95, CreatedAt: base},
		{ID: "s2", Symbol: "META", Type: contracts.SignalHold, Confidence: 0.90, CreatedAt: base},
	}

	result := Aggregate(signals)
	if len(result) != 0 {
		t.Errorf("Aggregate() with sell/hold only = %d groups, want 0", len(result))
	}
}

func TestAggregate_MixedSymbols(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	signals := []*contracts.Signal{
		buySignal("a1", "AAPL", 0.8, base),
		{ID: "m1", Symbol: "MSFT", Type: contracts.SignalSell, Confidence: 0.9, CreatedAt: base},
		buySignal("n1", "NVDA", 0.7, base),
		{ID: "a2", Symbol: "AAPL", Type: contracts.SignalHold, Confidence: 0.99, CreatedAt: base},
	}

	result := Aggregate(signals)
	if len(result) != 2 {
		t.Fatalf("Aggregate() returned %d groups, want 2", len(result))
	}
	// 입력 순서 보존
	if result[0].Symbol != "AAPL" || result[1].Symbol != "NVDA" {
		t.Errorf("group order = %s, %s; want AAPL, NVDA", result[0].Symbol, result[1].Symbol)
	}
	// hold 시그널은 best가 될 수 없지만 기여 목록에는 포함됨
	if result[0].Best.ID != "a1" {
		t.Errorf("AAPL best = %s, want a1", result[0].Best.ID)
	}
	if len(result[0].Contributing) != 2 {
		t.Errorf("AAPL contributing = %d, want 2", len(result[0].Contributing))
	}
}

func TestAggregatedSignal_SignalIDs(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	agg := AggregatedSignal{
		Symbol: "AAPL",
		Contributing: []*contracts.Signal{
			buySignal("sig-1", "AAPL", 0.8, base),
			buySignal("", "AAPL", 0.6, base), // ID 없는 시그널은 생략
			buySignal("sig-3", "AAPL", 0.7, base),
		},
	}

	ids := agg.SignalIDs()
	if len(ids) != 2 {
		t.Fatalf("SignalIDs() = %d ids, want 2", len(ids))
	}
	if ids[0] != "sig-1" || ids[1] != "sig-3" {
		t.Errorf("SignalIDs() = %v, want [sig-1 sig-3]", ids)
	}
}
