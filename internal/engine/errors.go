package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// Error Taxonomy
// =============================================================================

var (
	// ErrInvalidStopLoss 손절가가 진입가와 같거나 정의되지 않음 (해당 심볼만 스킵)
	ErrInvalidStopLoss = errors.New("invalid stop loss")

	// ErrMissingMarketData 시세 스냅샷 없음 (복구 가능: 제외 또는 추정 스냅샷 합성)
	ErrMissingMarketData = errors.New("missing market data")

	// ErrInvalidConfig 설정 오류 (전체 실행 중단, 부분 결과 없음)
	ErrInvalidConfig = errors.New("invalid config")
)

// Wire identifiers for the taxonomy errors. 캐시 왕복 후에도 errors.Is가
// 성립하도록 센티널을 kind 문자열로 직렬화한다.
const (
	kindInvalidStopLoss   = "invalid_stop_loss"
	kindMissingMarketData = "missing_market_data"
	kindInvalidConfig     = "invalid_config"
)

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStopLoss):
		return kindInvalidStopLoss
	case errors.Is(err, ErrMissingMarketData):
		return kindMissingMarketData
	case errors.Is(err, ErrInvalidConfig):
		return kindInvalidConfig
	default:
		return ""
	}
}

func kindError(kind string) error {
	switch kind {
	case kindInvalidStopLoss:
		return ErrInvalidStopLoss
	case kindMissingMarketData:
		return ErrMissingMarketData
	case kindInvalidConfig:
		return ErrInvalidConfig
	default:
		return nil
	}
}

// SymbolError records a per-symbol failure collected alongside successful candidates.
// 심볼 하나의 실패가 배치 전체를 중단시키지 않음
type SymbolError struct {
	Symbol string
	Err    error
	Reason string
}

type symbolErrorJSON struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
}

// Unwrap exposes the underlying taxonomy error for errors.Is checks
func (e *SymbolError) Unwrap() error {
	return e.Err
}

// MarshalJSON serializes the underlying sentinel as a kind string
func (e *SymbolError) MarshalJSON() ([]byte, error) {
	return json.Marshal(symbolErrorJSON{
		Symbol: e.Symbol,
		Kind:   errorKind(e.Err),
		Reason: e.Reason,
	})
}

// UnmarshalJSON restores the sentinel from the kind string so a cached
// SymbolError still satisfies errors.Is
func (e *SymbolError) UnmarshalJSON(data []byte) error {
	var aux symbolErrorJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Symbol = aux.Symbol
	e.Err = kindError(aux.Kind)
	e.Reason = aux.Reason
	return nil
}

func newSymbolError(symbol string, err error, format string, args ...interface{}) *SymbolError {
	return &SymbolError{
		Symbol: symbol,
		Err:    err,
		Reason: fmt.Sprintf(format, args...),
	}
}
