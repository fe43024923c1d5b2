package models

import "time"

// StopLossMethod selects how the protective stop is placed.
type StopLossMethod string

const (
	StopLossATR        StopLossMethod = "ATR"
	StopLossLevel      StopLossMethod = "LEVEL"
	StopLossPercentage StopLossMethod = "PERCENTAGE"
)

type StopLoss struct {
	Price             float64        `json:"price"`
	Distance          float64        `json:"distance"`
	DistancePercent   float64        `json:"distance_percent"`
	Method            StopLossMethod `json:"method"`
	InvalidationLogic string         `json:"invalidation_logic"`
}

type TakeProfit struct {
	Price              float64 `json:"price"`
	Distance           float64 `json:"distance"`
	DistancePercent    float64 `json:"distance_percent"`
	Ratio              float64 `json:"ratio"`
	PositionPercentage float64 `json:"position_percentage"`
}

// TakeProfits is the three-leg exit ladder (50/30/20 of the position).
type TakeProfits struct {
	TP1 TakeProfit `json:"tp1"`
	TP2 TakeProfit `json:"tp2"`
	TP3 TakeProfit `json:"tp3"`
}

// Legs returns the ladder in order.
func (t TakeProfits) Legs() []TakeProfit {
	return []TakeProfit{t.TP1, t.TP2, t.TP3}
}

type RiskRewardStatus string

const (
	RiskRewardExcellent  RiskRewardStatus = "EXCELLENT"
	RiskRewardGood       RiskRewardStatus = "GOOD"
	RiskRewardAcceptable RiskRewardStatus = "ACCEPTABLE"
	RiskRewardReject     RiskRewardStatus = "REJECT"
)

type RiskReward struct {
	Ratio        float64          `json:"ratio"`
	RiskAmount   float64          `json:"risk_amount"`
	ProfitTarget float64          `json:"profit_target"`
	Status       RiskRewardStatus `json:"status"`
}

type PositionSize struct {
	Units            float64 `json:"units"`
	LotSize          float64 `json:"lot_size"`
	RiskAmount       float64 `json:"risk_amount"`
	PositionValue    float64 `json:"position_value"`
	LeverageRequired float64 `json:"leverage_required"`
}

type DailyLossCheck struct {
	Allowed          bool    `json:"allowed"`
	DailyLosses      float64 `json:"daily_losses"`
	PotentialLoss    float64 `json:"potential_loss"`
	TotalPotential   float64 `json:"total_potential"`
	MaxAllowed       float64 `json:"max_allowed"`
	RemainingAllowed float64 `json:"remaining_allowance"`
}

type PortfolioCheck struct {
	PositionCountOK  bool    `json:"position_count_ok"`
	OpenPositions    int     `json:"open_positions"`
	MaxPositions     int     `json:"max_positions"`
	TotalRisk        float64 `json:"total_risk"`
	TotalRiskPercent float64 `json:"total_risk_percent"`
	WithinLimits     bool    `json:"within_limits"`
	AllChecksPassed  bool    `json:"all_checks_passed"`
}

// RiskChecks bundles both portfolio gates. AllPassed false is the
// "risk limit exceeded" outcome.
type RiskChecks struct {
	DailyLoss DailyLossCheck `json:"daily_loss"`
	Portfolio PortfolioCheck `json:"portfolio"`
	AllPassed bool           `json:"all_passed"`
}

// RiskAssessment is the full risk cascade for one directional signal.
type RiskAssessment struct {
	StopLoss     StopLoss     `json:"stop_loss"`
	TakeProfits  TakeProfits  `json:"take_profits"`
	RiskReward   RiskReward   `json:"risk_reward"`
	PositionSize PositionSize `json:"position_size"`
	Checks       RiskChecks   `json:"risk_checks"`
}

// OpenPosition is a registered position's risk contribution.
type OpenPosition struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	RiskAmount float64   `json:"risk_amount"`
	OpenedAt   time.Time `json:"opened_at"`
}

// PortfolioRiskState is a point-in-time copy of the risk manager's state.
type PortfolioRiskState struct {
	Capital             float64        `json:"capital"`
	MaxRiskPercent      float64        `json:"max_risk_percent"`
	MaxDailyLossPercent float64        `json:"max_daily_loss_percent"`
	MaxDrawdownPercent  float64        `json:"max_drawdown_percent"`
	MaxOpenPositions    int            `json:"max_open_positions"`
	DailyLosses         float64        `json:"daily_losses"`
	OpenPositions       []OpenPosition `json:"open_positions"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
