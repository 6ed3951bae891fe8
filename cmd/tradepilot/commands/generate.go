package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "후보 생성 1회 실행",
	Long: `활성 매수 시그널과 현재 시세로 후보 생성 파이프라인을 1회 실행합니다.

이 명령어는:
- 활성 매수 시그널 로드
- 시세 스냅샷 해석 (캐시 우선)
- 포지션 사이징 / 리스크 점수 / 수익 전망 계산
- 랭킹 후 DB와 Redis에 저장

Example:
  go run ./cmd/tradepilot generate
  go run ./cmd/tradepilot generate --sort risk_score --limit 10`,
	RunE: runGenerate,
}

var (
	generateSort  string
	generateLimit int
)

func init() {
	rootCmd.AddCommand(generateCmd)

	// Flags
	generateCmd.Flags().StringVar(&generateSort, "sort", "profit_projection", "정렬 키 (profit_projection|signal_strength|risk_score)")
	generateCmd.Flags().IntVar(&generateLimit, "limit", 0, "최대 후보 수 (기본: CANDIDATE_LIMIT)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradePilot Candidate Generation ===")

	sortKey := contracts.SortKey(generateSort)
	if !sortKey.Valid() {
		return fmt.Errorf("invalid sort key: %s", generateSort)
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	limit := generateLimit
	if limit <= 0 {
		limit = d.cfg.Trading.CandidateLimit
	}

	tradingCfg := &contracts.AutoTradingConfig{
		Enabled:          d.cfg.Trading.Enabled,
		MaxPositionSize:  d.cfg.Trading.MaxPositionSize,
		RiskPerTrade:     d.cfg.Trading.RiskPerTrade,
		MaxCorrelation:   d.cfg.Trading.MaxCorrelation,
		TargetDeployment: d.cfg.Trading.TargetDeployment,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := d.service.Generate(ctx, tradingCfg, d.cfg.Trading.AccountValue, limit)
	if err != nil {
		return fmt.Errorf("candidate generation: %w", err)
	}

	fmt.Printf("\n✅ Run %s: %d candidates, %d skipped\n\n", result.RunID, len(result.Candidates), len(result.Errors))

	fmt.Printf("%-8s %-10s %-8s %-8s %-10s %-12s %-8s\n",
		"SYMBOL", "PRICE", "PROJ%", "RISK", "SIZE", "SENSITIVITY", "STATUS")
	for _, c := range result.Candidates {
		fmt.Printf("%-8s %-10.2f %-8.2f %-8.2f %-10.0f %-12s %-8s\n",
			c.Symbol, c.Price, c.ProfitProjection, c.RiskScore,
			c.PositionSize, c.TimeSensitivity, c.AutomationStatus)
	}

	if len(result.Errors) > 0 {
		fmt.Println("\nSkipped symbols:")
		for _, symErr := range result.Errors {
			fmt.Printf("  %s: %s\n", symErr.Symbol, symErr.Reason)
		}
	}

	return nil
}
