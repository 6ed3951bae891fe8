package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/httputil"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// quoteResponse is the REST feed's JSON quote payload
type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volatility    float64 `json:"volatility"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
}

// RESTPoller periodically refreshes snapshots over the REST quote API.
// 스트림이 다루지 않는 심볼의 기본 수집 경로.
// ⭐ SSOT: REST 시세 폴링 및 rate limit 관리는 이 폴러에서만
type RESTPoller struct {
	logger     *logger.Logger
	httpClient *httputil.Client
	provider   *Provider

	baseURL  string
	interval time.Duration
	limiter  *rate.Limiter // 피드 API 호출 상한
	fallback *WebQuoteClient

	symbols   map[string]bool
	symbolsMu sync.RWMutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRESTPoller creates a rate-limited REST quote poller
func NewRESTPoller(baseURL string, rateLimit int, interval time.Duration, httpClient *httputil.Client, provider *Provider, log *logger.Logger) *RESTPoller {
	if rateLimit <= 0 {
		rateLimit = 10
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &RESTPoller{
		logger:     log,
		httpClient: httpClient,
		provider:   provider,
		baseURL:    baseURL,
		interval:   interval,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		symbols:    make(map[string]bool),
		stopCh:     make(chan struct{}),
	}
}

// WithFallback sets the scraping client used when the REST feed fails.
// 지연 시세라도 없는 것보다 낫다
func (p *RESTPoller) WithFallback(client *WebQuoteClient) *RESTPoller {
	p.fallback = client
	return p
}

// Start begins the polling loop
func (p *RESTPoller) Start(ctx context.Context) {
	p.logger.WithField("interval", p.interval).Info("Starting quote poller")
	p.wg.Add(1)
	go p.pollLoop(ctx)
}

// Stop stops the polling loop
func (p *RESTPoller) Stop() {
	p.logger.Info("Stopping quote poller")
	close(p.stopCh)
	p.wg.Wait()
}

// UpdateSymbols replaces the tracked symbol set
func (p *RESTPoller) UpdateSymbols(symbols []string) {
	p.symbolsMu.Lock()
	p.symbols = make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		p.symbols[symbol] = true
	}
	p.symbolsMu.Unlock()

	p.logger.WithField("count", len(symbols)).Info("Updated poller symbols")
}

func (p *RESTPoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce refreshes every tracked symbol, honoring the rate limit
func (p *RESTPoller) pollOnce(ctx context.Context) {
	p.symbolsMu.RLock()
	symbols := make([]string, 0, len(p.symbols))
	for symbol := range p.symbols {
		symbols = append(symbols, symbol)
	}
	p.symbolsMu.RUnlock()

	for _, symbol := range symbols {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		snap, err := p.fetchQuote(ctx, symbol)
		if err != nil && p.fallback != nil {
			p.logger.WithError(err).WithField("symbol", symbol).
				Debug("REST quote failed, trying web fallback")
			snap, err = p.fallback.FetchQuote(ctx, symbol)
		}
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).
				Warn("Quote poll failed")
			continue
		}
		p.provider.Update(ctx, snap)
	}
}

// fetchQuote fetches one symbol's quote from the REST API
func (p *RESTPoller) fetchQuote(ctx context.Context, symbol string) (*contracts.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/v1/quotes/%s", p.baseURL, symbol)

	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("decode quote failed: %w", err)
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("feed returned no price for %s", symbol)
	}

	return &contracts.MarketSnapshot{
		Symbol:        symbol,
		CompanyName:   quote.CompanyName,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        quote.Volume,
		High:          quote.High,
		Low:           quote.Low,
		Volatility:    quote.Volatility,
		MarketCap:     quote.MarketCap,
		PERatio:       quote.PERatio,
		FetchedAt:     time.Now(),
	}, nil
}
