package database_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/database"
)

// Example shows the connection check the status command performs.
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Printf("Healthy: %v (ping %v)\n", status.Healthy, status.ResponseTime)
	fmt.Printf("Connections: %d/%d in use, %d idle\n",
		status.Stats.AcquiredConns, status.Stats.MaxConns, status.Stats.IdleConns)
}
