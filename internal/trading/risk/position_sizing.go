package risk

import (
	"errors"
	"fmt"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

// unitsPerLot is the standard forex lot.
const unitsPerLot = 100000

// ErrInvalidParams is returned for non-positive capital or risk percent.
var ErrInvalidParams = errors.New("invalid risk parameters")

// Params is the capital and per-trade risk a calculation runs against.
type Params struct {
	Capital     float64 `json:"capital"`
	RiskPercent float64 `json:"risk_percent"`
}

// Validate checks that capital is positive and risk is a percent in (0, 100].
func (p Params) Validate() error {
	if p.Capital <= 0 {
		return fmt.Errorf("capital %v: %w", p.Capital, ErrInvalidParams)
	}
	if p.RiskPercent <= 0 || p.RiskPercent > 100 {
		return fmt.Errorf("risk percent %v: %w", p.RiskPercent, ErrInvalidParams)
	}
	return nil
}

// RiskAmount is the currency amount risked per trade.
func (p Params) RiskAmount() float64 {
	return p.Capital * p.RiskPercent / 100
}

// CalculateRiskReward weighs each take-profit distance by its share of the
// position and compares it with the stop distance.
func CalculateRiskReward(sl models.StopLoss, tps models.TakeProfits, params Params) models.RiskReward {
	weighted := 0.0
	for _, tp := range tps.Legs() {
		weighted += tp.Distance * tp.PositionPercentage / 100
	}

	ratio := 0.0
	if sl.Distance > 0 {
		ratio = weighted / sl.Distance
	}
	riskAmount := params.RiskAmount()

	return models.RiskReward{
		Ratio:        utils.Round(ratio, 2),
		RiskAmount:   utils.Round(riskAmount, 2),
		ProfitTarget: utils.Round(riskAmount*ratio, 2),
		Status:       riskRewardStatus(ratio),
	}
}

func riskRewardStatus(ratio float64) models.RiskRewardStatus {
	switch {
	case ratio >= 2.5:
		return models.RiskRewardExcellent
	case ratio >= 2.0:
		return models.RiskRewardGood
	case ratio >= 1.5:
		return models.RiskRewardAcceptable
	default:
		return models.RiskRewardReject
	}
}

// CalculatePositionSize sizes the position so that hitting the stop loses
// exactly the risk amount. Units and lots are not rounded so that small
// positions on high-priced instruments stay positive.
func CalculatePositionSize(entry float64, sl models.StopLoss, params Params) (models.PositionSize, error) {
	if sl.Distance <= 0 {
		return models.PositionSize{}, ErrInvalidStopDistance
	}
	if err := params.Validate(); err != nil {
		return models.PositionSize{}, err
	}

	riskAmount := params.RiskAmount()
	units := riskAmount / sl.Distance
	value := units * entry

	return models.PositionSize{
		Units:            units,
		LotSize:          units / unitsPerLot,
		RiskAmount:       utils.Round(riskAmount, 2),
		PositionValue:    utils.Round(value, 2),
		LeverageRequired: utils.Round(value/params.Capital, 2),
	}, nil
}
