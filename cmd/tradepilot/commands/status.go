package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/database"
	"github.com/wonny/tradepilot/backend/pkg/logger"
	"github.com/wonny/tradepilot/backend/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "인프라 연결 상태 확인",
	Long: `설정/DB/Redis 연결 상태를 확인합니다.

표시 정보:
- 환경/포트 설정
- PostgreSQL 연결 및 풀 상태
- Redis 연결 상태
- 트레이딩 설정 요약

Example:
  go run ./cmd/tradepilot status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradePilot Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	fmt.Printf("\nEnvironment: %s\n", cfg.Env)
	fmt.Printf("Port:        %s\n", cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Database
	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("Database:    ❌ %v\n", err)
	} else {
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("Database:    ❌ ping failed: %v\n", err)
		} else {
			stats := db.Pool.Stat()
			fmt.Printf("Database:    ✅ connected (%d/%d conns)\n",
				stats.AcquiredConns(), stats.MaxConns())
		}
	}

	// Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("Redis:       ❌ %v\n", err)
	} else {
		defer redisClient.Close()
		if !redisClient.Enabled() {
			fmt.Println("Redis:       ⚠️  disabled (REDIS_URL not set)")
		} else if err := redisClient.Ping(ctx); err != nil {
			fmt.Printf("Redis:       ❌ ping failed: %v\n", err)
		} else {
			fmt.Println("Redis:       ✅ connected")
		}
	}

	// Trading config
	fmt.Println("\nTrading config:")
	fmt.Printf("  enabled:           %v\n", cfg.Trading.Enabled)
	fmt.Printf("  account_value:     %.0f\n", cfg.Trading.AccountValue)
	fmt.Printf("  max_position_size: %.0f\n", cfg.Trading.MaxPositionSize)
	fmt.Printf("  risk_per_trade:    %.2f%%\n", cfg.Trading.RiskPerTrade)
	fmt.Printf("  candidate_limit:   %d\n", cfg.Trading.CandidateLimit)

	log.Info("Status check completed")
	return nil
}
