package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data feed
	Feed FeedConfig

	// Candidate engine defaults
	Trading TradingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FeedConfig holds market data feed configuration
// 실시간 시세: WebSocket 스트림 + REST 폴링 + 웹 스크래핑 폴백
type FeedConfig struct {
	RESTBaseURL  string
	StreamURL    string
	WebQuoteURL  string // HTML 시세 페이지 (폴백)
	APIKey       string
	RateLimit    int // REST 요청/초
	PollInterval time.Duration
	SnapshotTTL  time.Duration // 이 시간이 지난 시세는 stale로 취급
}

// TradingConfig holds default auto-trading policy values
// 실제 정책은 호출자가 요청마다 공급하며, 여기 값은 스케줄러/CLI 기본값
type TradingConfig struct {
	Enabled          bool
	AccountValue     float64
	MaxPositionSize  float64
	RiskPerTrade     float64 // percent of account equity
	MaxCorrelation   float64
	TargetDeployment float64
	CandidateLimit   int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8091"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "tradepilot"),
			User:            getEnv("DB_USER", "tradepilot"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Market data feed
		Feed: FeedConfig{
			RESTBaseURL:  getEnv("FEED_REST_BASE_URL", "https://quote.tradepilot.dev/api"),
			StreamURL:    getEnv("FEED_STREAM_URL", "wss://quote.tradepilot.dev/stream"),
			WebQuoteURL:  getEnv("FEED_WEBQUOTE_URL", "https://finance.yahoo.com/quote"),
			APIKey:       getEnv("FEED_API_KEY", ""),
			RateLimit:    getEnvAsInt("FEED_RATE_LIMIT", 10),
			PollInterval: getEnvAsDuration("FEED_POLL_INTERVAL", "5s"),
			SnapshotTTL:  getEnvAsDuration("FEED_SNAPSHOT_TTL", "1m"),
		},

		// Candidate engine defaults
		Trading: TradingConfig{
			Enabled:          getEnvAsBool("TRADING_ENABLED", false),
			AccountValue:     getEnvAsFloat("TRADING_ACCOUNT_VALUE", 100000),
			MaxPositionSize:  getEnvAsFloat("TRADING_MAX_POSITION_SIZE", 25000),
			RiskPerTrade:     getEnvAsFloat("TRADING_RISK_PER_TRADE", 1.0),
			MaxCorrelation:   getEnvAsFloat("TRADING_MAX_CORRELATION", 0.7),
			TargetDeployment: getEnvAsFloat("TRADING_TARGET_DEPLOYMENT", 0.8),
			CandidateLimit:   getEnvAsInt("TRADING_CANDIDATE_LIMIT", 20),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Trading defaults must be usable by the engine
	if c.Trading.AccountValue <= 0 {
		return fmt.Errorf("TRADING_ACCOUNT_VALUE must be positive")
	}
	if c.Trading.RiskPerTrade <= 0 {
		return fmt.Errorf("TRADING_RISK_PER_TRADE must be positive")
	}
	if c.Trading.MaxPositionSize <= 0 {
		return fmt.Errorf("TRADING_MAX_POSITION_SIZE must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
