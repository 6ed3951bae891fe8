package config_test

import (
	"fmt"

	"github.com/wonny/tradepilot/backend/pkg/config"
)

// Example shows reading the trading policy out of the environment.
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("API on port %s (%s)\n", cfg.Port, cfg.Env)
	fmt.Printf("Candidate limit: %d\n", cfg.Trading.CandidateLimit)
	fmt.Printf("Risk per trade: %.1f%%\n", cfg.Trading.RiskPerTrade)
	fmt.Printf("Auto-trading enabled: %v\n", cfg.Trading.Enabled)
}
