package contracts

import "fmt"

// AutoTradingConfig is the policy envelope constraining position sizing
// ⭐ SSOT: 호출마다 주입되는 사이징 정책 (엔진은 저장하지 않음)
type AutoTradingConfig struct {
	Enabled          bool    `json:"enabled"`
	MaxPositionSize  float64 `json:"max_position_size"` // currency units
	RiskPerTrade     float64 `json:"risk_per_trade"`    // percent of account equity
	MaxCorrelation   float64 `json:"max_correlation"`   // 0.0 ~ 1.0
	TargetDeployment float64 `json:"target_deployment"` // percent of account to deploy
}

// Validate rejects config values that would corrupt every symbol in a run.
// 설정 오류는 전체 실행을 중단시킴 (심볼별 오류와 달리 부분 결과 없음)
func (c *AutoTradingConfig) Validate(accountValue float64) error {
	if accountValue <= 0 {
		return fmt.Errorf("account value must be positive, got %.2f", accountValue)
	}
	if c.RiskPerTrade <= 0 {
		return fmt.Errorf("risk per trade must be positive, got %.2f", c.RiskPerTrade)
	}
	if c.MaxPositionSize <= 0 {
		return fmt.Errorf("max position size must be positive, got %.2f", c.MaxPositionSize)
	}
	if c.MaxCorrelation < 0 || c.MaxCorrelation > 1 {
		return fmt.Errorf("max correlation must be in [0,1], got %.2f", c.MaxCorrelation)
	}
	return nil
}

// InitialStatus returns the automation disposition for freshly synthesized candidates
func (c *AutoTradingConfig) InitialStatus() AutomationStatus {
	if c.Enabled {
		return AutomationAuto
	}
	return AutomationPaused
}
