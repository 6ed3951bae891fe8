package candidate

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tradepilot/backend/internal/automation"
	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/internal/engine"
	"github.com/wonny/tradepilot/backend/internal/signalstore"
	"github.com/wonny/tradepilot/backend/pkg/logger"
	"github.com/wonny/tradepilot/backend/pkg/redis"
)

// RunResult bundles one generation run's outputs
type RunResult struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Candidates  []*contracts.Candidate `json:"candidates"`
	Errors      []*engine.SymbolError  `json:"errors,omitempty"`
}

// SignalSource supplies the active buy signals feeding a run.
type SignalSource interface {
	ListActiveBuys(ctx context.Context) ([]*contracts.Signal, error)
}

// SnapshotSource resolves fresh quotes for the run's symbols.
type SnapshotSource interface {
	Snapshots(ctx context.Context, symbols []string) map[string]*contracts.MarketSnapshot
}

// RunStore persists generation runs.
type RunStore interface {
	SaveRun(ctx context.Context, runID string, generatedAt time.Time, candidates []*contracts.Candidate) error
	LatestRunID(ctx context.Context) (string, error)
	GetRun(ctx context.Context, runID string) ([]*contracts.Candidate, error)
	UpdateAutomationStatus(ctx context.Context, runID, symbol string, status contracts.AutomationStatus) error
}

var _ SignalSource = (*signalstore.Repository)(nil)
var _ RunStore = (*Repository)(nil)

// Service orchestrates generation runs end to end: load signals, resolve
// quotes, run the engine, persist and cache the result, seed automation state.
// ⭐ SSOT: 후보 생성 실행 흐름은 이 서비스에서만
type Service struct {
	engine     *engine.Engine
	signals    SignalSource
	provider   SnapshotSource
	repo       RunStore // nil이면 DB 저장 생략
	cache      *redis.Cache
	automation *automation.Store
	logger     *logger.Logger
}

// NewService wires the generation pipeline
func NewService(eng *engine.Engine, signals SignalSource, provider SnapshotSource, repo RunStore, redisClient *redis.Client, store *automation.Store, log *logger.Logger) *Service {
	return &Service{
		engine:     eng,
		signals:    signals,
		provider:   provider,
		repo:       repo,
		cache:      redis.NewCache(redisClient, "candidates"),
		automation: store,
		logger:     log,
	}
}

// Generate executes one full run. The complete candidate set is persisted
// and cached; limit only truncates the returned result.
// 전체 집합을 저장해야 조회 시점에 어떤 정렬 키로도 올바른 top-N이 나옴
func (s *Service) Generate(ctx context.Context, config *contracts.AutoTradingConfig, accountValue float64, limit int) (*RunResult, error) {
	generatedAt := time.Now()
	runID := fmt.Sprintf("run_%s", generatedAt.UTC().Format("20060102_150405"))

	signals, err := s.signals.ListActiveBuys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signals: %w", err)
	}

	symbols := make([]string, 0, len(signals))
	seen := make(map[string]bool)
	for _, sig := range signals {
		if !seen[sig.Symbol] {
			seen[sig.Symbol] = true
			symbols = append(symbols, sig.Symbol)
		}
	}
	snapshots := s.provider.Snapshots(ctx, symbols)

	candidates, symbolErrs, err := s.engine.GenerateCandidates(ctx, signals, snapshots, config, accountValue)
	if err != nil {
		return nil, err
	}

	ranked := engine.Rank(candidates, contracts.SortByProfitProjection, 0)

	// 자동매매 상태 등록. 이미 추적 중인 심볼은 현재 상태가 우선이므로
	// 후보에도 그 상태를 반영한다 (buying/paused는 재실행에도 유지)
	for _, c := range ranked {
		s.automation.Seed(c.Symbol, c.AutomationStatus)
		c.AutomationStatus = s.automation.Get(c.Symbol)
	}

	result := &RunResult{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Candidates:  ranked,
		Errors:      symbolErrs,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, runID, generatedAt, ranked); err != nil {
			s.logger.WithError(err).Error("Failed to persist candidate run")
		}
	}
	if err := s.cache.Set(ctx, redis.CandidateRunKey("latest"), result, redis.TTLLong); err != nil {
		s.logger.WithError(err).Warn("Failed to cache candidate run")
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":     runID,
		"candidates": len(ranked),
		"errors":     len(symbolErrs),
	}).Info("Candidate run completed")

	response := *result
	response.Candidates = engine.Rank(ranked, contracts.SortByProfitProjection, limit)
	return &response, nil
}

// Latest returns the most recent run, ranked by the caller's sort key and
// truncated to limit. Redis 캐시 우선, 없으면 DB 폴백.
func (s *Service) Latest(ctx context.Context, key contracts.SortKey, limit int) (*RunResult, error) {
	var cached RunResult
	found, err := s.cache.Get(ctx, redis.CandidateRunKey("latest"), &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read candidate cache")
	}
	if found {
		cached.Candidates = engine.Rank(cached.Candidates, key, limit)
		return &cached, nil
	}

	if s.repo == nil {
		return nil, fmt.Errorf("no candidate run available")
	}

	runID, err := s.repo.LatestRunID(ctx)
	if err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, fmt.Errorf("no candidate run available")
	}

	candidates, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		RunID:      runID,
		Candidates: engine.Rank(candidates, key, limit),
	}, nil
}

// Transition applies an automation transition and records it on the
// latest persisted run
func (s *Service) Transition(ctx context.Context, symbol string, target contracts.AutomationStatus) (bool, error) {
	applied := s.automation.Transition(symbol, target)
	if !applied {
		return false, nil
	}

	if s.repo != nil {
		runID, err := s.repo.LatestRunID(ctx)
		if err != nil {
			return true, err
		}
		if runID != "" {
			if err := s.repo.UpdateAutomationStatus(ctx, runID, symbol, target); err != nil {
				s.logger.WithError(err).WithField("symbol", symbol).
					Warn("Failed to persist automation status")
			}
		}
	}
	return true, nil
}
