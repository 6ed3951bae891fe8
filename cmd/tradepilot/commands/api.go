package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradepilot/backend/internal/api"
	"github.com/wonny/tradepilot/backend/internal/api/handlers"
	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/internal/marketdata"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `후보 조회/자동매매 제어 REST API 서버를 시작합니다.

이 명령어는:
- 시세 피드(스트림 + REST 폴러) 시작
- HTTP API 서버 시작

Endpoints:
  GET  /health                              - Health check
  GET  /api/candidates                      - 랭킹된 후보 조회
  POST /api/candidates/generate             - 즉시 생성 실행
  POST /api/candidates/{symbol}/automation  - 자동매매 상태 전이
  GET  /api/automation                      - 심볼별 자동매매 상태

Example:
  go run ./cmd/tradepilot api
  go run ./cmd/tradepilot api --port 8091`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== TradePilot API Server ===")

	// 1. Wire dependencies
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}
	log := d.log

	log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Start market data feeds
	d.poller.Start(ctx)
	defer d.poller.Stop()

	if d.cfg.Feed.StreamURL != "" {
		stream := marketdata.NewStreamClient(d.cfg.Feed.StreamURL, d.cfg.Feed.APIKey, log)
		stream.OnQuote(func(snap *contracts.MarketSnapshot) {
			d.provider.Update(ctx, snap)
		})
		if err := stream.Connect(ctx); err != nil {
			log.WithError(err).Warn("Quote stream unavailable, relying on REST poller")
		} else {
			defer stream.Close()
		}
	}

	// 3. Create handlers and router
	candidateHandler := handlers.NewCandidateHandler(d.service, d.cfg, log)
	automationHandler := handlers.NewAutomationHandler(d.service, d.store, log)
	router := api.NewRouter(candidateHandler, automationHandler, log)

	// 4. Start server with graceful shutdown
	server := api.New(d.cfg, log, router)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
