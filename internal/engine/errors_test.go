package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSymbolError_JSONRoundTripKeepsTaxonomy(t *testing.T) {
	// 캐시된 실행 결과를 다시 읽어도 errors.Is 분류가 유지돼야 한다
	tests := []struct {
		name     string
		err      *SymbolError
		sentinel error
	}{
		{
			name:     "missing market data",
			err:      newSymbolError("TSLA", ErrMissingMarketData, "no snapshot for TSLA"),
			sentinel: ErrMissingMarketData,
		},
		{
			name:     "invalid stop loss",
			err:      newSymbolError("AAPL", ErrInvalidStopLoss, "stop loss 100 equals entry 100"),
			sentinel: ErrInvalidStopLoss,
		},
		{
			name:     "invalid config",
			err:      newSymbolError("MSFT", ErrInvalidConfig, "risk per trade must be positive"),
			sentinel: ErrInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.err)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var restored SymbolError
			if err := json.Unmarshal(data, &restored); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !errors.Is(&restored, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false after round trip", &restored, tt.sentinel)
			}
			if restored.Symbol != tt.err.Symbol || restored.Reason != tt.err.Reason {
				t.Errorf("restored = %+v, want %+v", restored, tt.err)
			}
		})
	}
}

func TestSymbolError_UnknownKindStaysDisplayOnly(t *testing.T) {
	var restored SymbolError
	if err := json.Unmarshal([]byte(`{"symbol":"NVDA","reason":"legacy entry"}`), &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if restored.Err != nil {
		t.Errorf("Err = %v, want nil for missing kind", restored.Err)
	}
	if restored.Error() != "NVDA: legacy entry" {
		t.Errorf("Error() = %q", restored.Error())
	}
}
