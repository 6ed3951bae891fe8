package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/httputil"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// WebQuoteClient scrapes delayed quotes from the public finance portal.
// 스트림/REST 피드가 모두 죽었을 때의 백업 소스 (지연 시세).
// ⭐ SSOT: HTML 시세 스크레이핑은 이 클라이언트에서만
type WebQuoteClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewWebQuoteClient creates a web quote scraper
func NewWebQuoteClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *WebQuoteClient {
	return &WebQuoteClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// FetchQuote scrapes the quote page for one symbol
func (c *WebQuoteClient) FetchQuote(ctx context.Context, symbol string) (*contracts.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/quote/%s", c.baseURL, symbol)

	resp, err := c.httpClient.Get(ctx, url)
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

	snap, err := c.parseQuoteHTML(string(body), symbol)
	if err != nil {
		return nil, fmt.Errorf("parse quote page failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  snap.Price,
	}).Debug("Scraped web quote")
	return snap, nil
}

// parseQuoteHTML extracts quote fields from the portal's quote page.
// 페이지 구조: .quote-header 안에 가격/등락, .quote-stats 테이블에 거래량/고저
func (c *WebQuoteClient) parseQuoteHTML(html, symbol string) (*contracts.MarketSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	snap := &contracts.MarketSnapshot{Symbol: symbol}

	header := doc.Find(".quote-header")
	snap.CompanyName = strings.TrimSpace(header.Find(".company-name").Text())
	snap.Price = parsePrice(header.Find(".last-price").Text())
	snap.Change = parsePrice(header.Find(".price-change").Text())
	snap.ChangePercent = parsePrice(strings.TrimSuffix(
		strings.TrimSpace(header.Find(".change-percent").Text()), "%"))

	if snap.Price <= 0 {
		return nil, fmt.Errorf("no price found for %s", symbol)
	}

	doc.Find(".quote-stats tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())

		switch {
		case strings.Contains(label, "volume"):
			snap.Volume = parseVolume(value)
		case strings.Contains(label, "high"):
			snap.High = parsePrice(value)
		case strings.Contains(label, "low"):
			snap.Low = parsePrice(value)
		case strings.Contains(label, "market cap"):
			snap.MarketCap = parsePrice(value)
		case strings.Contains(label, "p/e"):
			snap.PERatio = parsePrice(value)
		}
	})

	return snap, nil
}

func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseVolume(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v * float64(multiplier))
}
