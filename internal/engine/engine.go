package engine

import (
	"context"
	"fmt"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// =============================================================================
// Engine - 후보 생성 파이프라인 오케스트레이터
// =============================================================================

// Engine turns raw signals and market snapshots into ranked trading candidates.
// ⭐ SSOT: 후보 생성 파이프라인은 여기서만 (Aggregate → Resolve → Size → Synthesize)
// 실행 간 상태 없음: 매 호출이 입력 스냅샷에 대한 순수 계산
type Engine struct {
	logger *logger.Logger
}

// New creates a candidate generation engine
func New(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// GenerateCandidates runs the full pipeline over one immutable input set.
//
// 심볼별 오류 (InvalidStopLoss, MissingMarketData)는 배치를 중단시키지 않고
// 후보 목록과 함께 수집되어 반환됨. 설정 오류는 즉시 중단 (부분 결과 없음).
func (e *Engine) GenerateCandidates(ctx context.Context, signals []*contracts.Signal, snapshots map[string]*contracts.MarketSnapshot, config *contracts.AutoTradingConfig, accountValue float64) ([]*contracts.Candidate, []*SymbolError, error) {
	if config == nil {
		return nil, nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(accountValue); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	aggregated := Aggregate(signals)
	candidates := make([]*contracts.Candidate, 0, len(aggregated))
	symbolErrs := make([]*SymbolError, 0)

	for _, agg := range aggregated {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		candidate, symErr := e.processSymbol(&agg, snapshots, config, accountValue)
		if symErr != nil {
			e.logger.WithFields(map[string]interface{}{
				"symbol": symErr.Symbol,
				"reason": symErr.Reason,
			}).Warn("Symbol skipped during candidate generation")
			symbolErrs = append(symbolErrs, symErr)
			continue
		}
		candidates = append(candidates, candidate)
	}

	e.logger.WithFields(map[string]interface{}{
		"signals":    len(signals),
		"symbols":    len(aggregated),
		"candidates": len(candidates),
		"errors":     len(symbolErrs),
	}).Info("Candidate generation completed")

	return candidates, symbolErrs, nil
}

// processSymbol runs stages 4.2~4.4 for a single aggregated symbol
func (e *Engine) processSymbol(agg *AggregatedSignal, snapshots map[string]*contracts.MarketSnapshot, config *contracts.AutoTradingConfig, accountValue float64) (*contracts.Candidate, *SymbolError) {
	best := agg.Best

	snap, err := ResolveSnapshot(agg.Symbol, snapshots, best)
	if err != nil {
		return nil, asSymbolError(agg.Symbol, err)
	}

	sizing, err := CalculateSizing(agg.Symbol, accountValue, config.RiskPerTrade,
		snap.Price, best.StopLoss, best.Confidence, config.MaxPositionSize)
	if err != nil {
		return nil, asSymbolError(agg.Symbol, err)
	}

	// 심볼별 상관관계 데이터가 없으므로 정책 상한을 보수적 추정치로 사용
	riskScore := CalculateRiskScore(snap.Volatility, config.MaxCorrelation,
		snap.Price, sizing.StopDistance, best.Timeframe)
	profitProjection := CalculateProfitProjection(best.Confidence)

	return Synthesize(agg, snap, sizing, riskScore, profitProjection, config), nil
}

// asSymbolError normalizes pipeline errors into SymbolError
func asSymbolError(symbol string, err error) *SymbolError {
	if symErr, ok := err.(*SymbolError); ok {
		return symErr
	}
	return &SymbolError{Symbol: symbol, Err: err, Reason: err.Error()}
}
