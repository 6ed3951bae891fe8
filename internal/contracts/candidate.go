package contracts

import "time"

// AutomationStatus governs whether a candidate may be auto-executed
type AutomationStatus string

const (
	AutomationAuto      AutomationStatus = "auto"
	AutomationPaused    AutomationStatus = "paused"
	AutomationWatchOnly AutomationStatus = "watch-only"
	AutomationBuying    AutomationStatus = "buying" // 주문 제출 ~ 체결/취소 사이의 일시 상태
)

// TimeSensitivity is a coarse urgency classification for a candidate
type TimeSensitivity string

const (
	SensitivityHigh   TimeSensitivity = "high"
	SensitivityMedium TimeSensitivity = "medium"
	SensitivityLow    TimeSensitivity = "low"
)

// Candidate represents a computed, rankable trading opportunity
// ⭐ SSOT: 엔진 → API/자동매매 루프 결과 전달
// 매 파이프라인 실행마다 새로 생성되며, AutomationStatus 외에는 불변
type Candidate struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`

	// 시세 스냅샷 (비정규화)
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Estimated     bool    `json:"estimated"` // high/low가 피드가 아닌 추정치인 경우

	// 계산 결과
	ProfitProjection float64 `json:"profit_projection"` // percent, > 0
	ProfitConfidence float64 `json:"profit_confidence"` // 0.0 ~ 1.0
	PositionSize     float64 `json:"position_size"`     // currency units, >= 0
	PositionShares   float64 `json:"position_shares"`
	RiskScore        float64 `json:"risk_score"`      // 0.0 ~ 1.0
	SignalStrength   float64 `json:"signal_strength"` // 0.0 ~ 1.0
	Strategy         string  `json:"strategy"`

	AutomationStatus AutomationStatus `json:"automation_status"`
	TimeSensitivity  TimeSensitivity  `json:"time_sensitivity"`

	// 진입/청산 가격
	EntryTarget  float64 `json:"entry_target"`
	StopLoss     float64 `json:"stop_loss"`
	ProfitTarget float64 `json:"profit_target"`

	// 기여 시그널 ID (약한 참조: 시그널은 독립적으로 만료됨)
	SignalIDs []string `json:"signal_ids"`

	CreatedAt time.Time `json:"created_at"` // 최적 시그널의 생성 시각 passthrough
}

// IsAutoExecutable reports whether the automated order loop may act on this candidate
func (c *Candidate) IsAutoExecutable() bool {
	return c.AutomationStatus == AutomationAuto
}

// RewardRiskRatio returns projected reward per unit of risk score.
// RiskScore가 0이면 0을 반환 (비율 미정의)
func (c *Candidate) RewardRiskRatio() float64 {
	if c.RiskScore <= 0 {
		return 0
	}
	return c.ProfitProjection / c.RiskScore
}

// SortKey identifies the ranking dimension for candidate lists
type SortKey string

const (
	SortByProfitProjection SortKey = "profit_projection" // 내림차순
	SortBySignalStrength   SortKey = "signal_strength"   // 내림차순
	SortByRiskScore        SortKey = "risk_score"        // 오름차순 (낮을수록 좋음)
)

// Valid reports whether the sort key is one of the supported dimensions
func (k SortKey) Valid() bool {
	switch k {
	case SortByProfitProjection, SortBySignalStrength, SortByRiskScore:
		return true
	default:
		return false
	}
}
