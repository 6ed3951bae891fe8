package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradepilot",
	Short: "TradePilot - 시그널 기반 후보 생성/랭킹 엔진",
	Long: `TradePilot Unified CLI

트레이딩 시그널과 실시간 시세를 결합해 랭킹된 매수 후보를 생성하는 시스템.
포지션 사이징, 리스크 점수, 수익 전망, 자동매매 상태까지 한 번에 계산.

Usage:
  go run ./cmd/tradepilot [command]

Examples:
  go run ./cmd/tradepilot api
  go run ./cmd/tradepilot generate
  go run ./cmd/tradepilot scheduler start
  go run ./cmd/tradepilot status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
