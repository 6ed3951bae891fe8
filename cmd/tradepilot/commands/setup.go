package commands

import (
	"fmt"

	"github.com/wonny/tradepilot/backend/internal/automation"
	"github.com/wonny/tradepilot/backend/internal/candidate"
	"github.com/wonny/tradepilot/backend/internal/engine"
	"github.com/wonny/tradepilot/backend/internal/marketdata"
	"github.com/wonny/tradepilot/backend/internal/signalstore"
	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/database"
	"github.com/wonny/tradepilot/backend/pkg/httputil"
	"github.com/wonny/tradepilot/backend/pkg/logger"
	"github.com/wonny/tradepilot/backend/pkg/redis"
)

// deps bundles the shared wiring every long-running command needs
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	http     *httputil.Client
	provider *marketdata.Provider
	poller   *marketdata.RESTPoller
	service  *candidate.Service
	store    *automation.Store
}

// buildDeps wires config → infra → pipeline in dependency order
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	httpClient := httputil.New(cfg, log)
	if redisClient.Enabled() {
		// 피드 API 보호: Redis 기반 분산 rate limit
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(redisClient, "feed"), redis.FeedRateLimit)
	}

	snapshotCache := marketdata.NewSnapshotCache(redisClient, log)
	provider := marketdata.NewProvider(snapshotCache, cfg.Feed.SnapshotTTL, log)
	webQuote := marketdata.NewWebQuoteClient(httpClient, cfg.Feed.WebQuoteURL, log)
	poller := marketdata.NewRESTPoller(
		cfg.Feed.RESTBaseURL, cfg.Feed.RateLimit, cfg.Feed.PollInterval,
		httpClient, provider, log).WithFallback(webQuote)

	store := automation.NewStore(log)
	signalRepo := signalstore.NewRepository(db.Pool)
	candidateRepo := candidate.NewRepository(db.Pool)
	service := candidate.NewService(
		engine.New(log), signalRepo, provider, candidateRepo, redisClient, store, log)

	return &deps{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		http:     httpClient,
		provider: provider,
		poller:   poller,
		service:  service,
		store:    store,
	}, nil
}

// close releases infra connections
func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
