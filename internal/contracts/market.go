package contracts

import "time"

// MarketSnapshot represents a point-in-time quote for a symbol
// ⭐ SSOT: 시세 피드 → 엔진 데이터 전달 (다음 수집 시 대체됨)
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volatility    float64   `json:"volatility,omitempty"` // 0.0 ~ 1.0
	CompanyName   string    `json:"company_name,omitempty"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	PERatio       float64   `json:"pe_ratio,omitempty"`
	Estimated     bool      `json:"estimated"` // 피드 데이터가 아닌 추정치 여부
	FetchedAt     time.Time `json:"fetched_at"`
}

// HasRange reports whether the feed supplied a real high/low range
func (m *MarketSnapshot) HasRange() bool {
	return m.High > 0 && m.Low > 0
}

// EstimateRange fills high/low as price ± 2% when the feed omits them.
// 추정치임을 Estimated 플래그로 명시 (실제 시세와 구분)
func (m *MarketSnapshot) EstimateRange() {
	if m.HasRange() {
		return
	}
	m.High = m.Price * 1.02
	m.Low = m.Price * 0.98
	m.Estimated = true
}

// IsStale reports whether the snapshot is older than the given TTL
func (m *MarketSnapshot) IsStale(ttl time.Duration, now time.Time) bool {
	if m.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(m.FetchedAt) > ttl
}
