package risk

import (
	"math"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

// CalculateTakeProfits builds the 1R/2R/3R exit ladder (50/30/20 percent of
// the position). TP3 snaps to the next opposing level when that level lies
// beyond TP2 and not more than 20% past the nominal 3R target.
func CalculateTakeProfits(entry float64, sl models.StopLoss, direction models.SignalType, support, resistance *float64) models.TakeProfits {
	risk := sl.Distance
	sign := 1.0
	if direction == models.SignalTypeSell {
		sign = -1.0
	}

	tp1 := entry + sign*risk
	tp2 := entry + sign*risk*2
	tp3 := entry + sign*risk*3

	snapped := false
	if direction == models.SignalTypeBuy && resistance != nil && *resistance > tp2 && *resistance < tp3*1.2 {
		tp3, snapped = *resistance, true
	}
	if direction == models.SignalTypeSell && support != nil && *support < tp2 && *support > tp3*0.8 {
		tp3, snapped = *support, true
	}

	tp3Ratio := 3.0
	if snapped {
		tp3Ratio = utils.Round(math.Abs(entry-tp3)/risk, 2)
	}

	return models.TakeProfits{
		TP1: takeProfit(entry, tp1, 1.0, 50),
		TP2: takeProfit(entry, tp2, 2.0, 30),
		TP3: takeProfit(entry, tp3, tp3Ratio, 20),
	}
}

func takeProfit(entry, price, ratio, percentage float64) models.TakeProfit {
	distance := math.Abs(price - entry)
	return models.TakeProfit{
		Price:              price,
		Distance:           distance,
		DistancePercent:    utils.Round(distance/entry*100, 3),
		Ratio:              ratio,
		PositionPercentage: percentage,
	}
}
