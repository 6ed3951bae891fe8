package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/tradepilot/backend/internal/candidate"
	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// CandidateJob runs candidate generation on a fixed market-hours cadence
// ⭐ SSOT: 후보 생성 스케줄은 이 Job에서만
type CandidateJob struct {
	service *candidate.Service
	config  *config.Config
	logger  *logger.Logger
}

// NewCandidateJob creates a candidate generation job
func NewCandidateJob(service *candidate.Service, cfg *config.Config, log *logger.Logger) *CandidateJob {
	return &CandidateJob{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *CandidateJob) Name() string {
	return "candidate_generation"
}

// Schedule returns the cron schedule (every 5 minutes during market hours, ET)
func (j *CandidateJob) Schedule() string {
	return "0 */5 9-16 * * 1-5" // with seconds
}

// Run executes one generation run
func (j *CandidateJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled candidate generation")

	tradingCfg := &contracts.AutoTradingConfig{
		Enabled:          j.config.Trading.Enabled,
		MaxPositionSize:  j.config.Trading.MaxPositionSize,
		RiskPerTrade:     j.config.Trading.RiskPerTrade,
		MaxCorrelation:   j.config.Trading.MaxCorrelation,
		TargetDeployment: j.config.Trading.TargetDeployment,
	}

	result, err := j.service.Generate(ctx, tradingCfg, j.config.Trading.AccountValue, j.config.Trading.CandidateLimit)
	if err != nil {
		return fmt.Errorf("candidate generation: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"candidates": len(result.Candidates),
		"errors":     len(result.Errors),
	}).Info("Scheduled candidate generation completed")

	// 심볼별 오류는 실행 실패가 아님 (부분 결과 허용)
	for _, symErr := range result.Errors {
		j.logger.WithFields(map[string]interface{}{
			"symbol": symErr.Symbol,
			"reason": symErr.Reason,
		}).Warn("Symbol excluded from run")
	}

	return nil
}
