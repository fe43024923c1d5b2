package indicators

import (
	"math"

	"github.com/Alias1177/tradeagent/models"
)

type fibLevel struct {
	key   string
	ratio float64
}

// Evaluated in this order; ties on distance go to the earlier level.
var fibLevels = []fibLevel{
	{"0.0", 0},
	{"23.6", 0.236},
	{"38.2", 0.382},
	{"50.0", 0.5},
	{"61.8", 0.618},
	{"78.6", 0.786},
	{"100.0", 1},
}

// CalculateFibonacci computes retracement levels from the high of the last
// lookback closes and finds the level nearest to the current close.
func CalculateFibonacci(closes []float64, lookback int) (*models.FibonacciResult, error) {
	if err := requireBars(models.IndicatorFibonacci, 1, len(closes)); err != nil {
		return nil, err
	}

	window := closes
	if lookback > 0 && len(closes) > lookback {
		window = closes[len(closes)-lookback:]
	}

	high, low := window[0], window[0]
	for _, c := range window[1:] {
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	diff := high - low
	price := last(closes)

	res := &models.FibonacciResult{
		Levels: make(map[string]float64, len(fibLevels)),
		High:   high,
		Low:    low,
	}

	bestDistance := math.Inf(1)
	for _, lvl := range fibLevels {
		levelPrice := high - diff*lvl.ratio
		if lvl.ratio == 1 {
			levelPrice = low
		}
		res.Levels[lvl.key] = levelPrice

		if d := math.Abs(levelPrice - price); d < bestDistance {
			bestDistance = d
			res.NearestLevel = lvl.key
			res.NearestPrice = levelPrice
		}
	}

	return res, nil
}

// IsKeyFibonacciLevel reports whether a level is one of the retracements
// traders watch most (38.2, 50, 61.8).
func IsKeyFibonacciLevel(level string) bool {
	switch level {
	case "38.2", "50.0", "61.8":
		return true
	}
	return false
}
