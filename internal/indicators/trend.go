package indicators

import (
	"github.com/markcheno/go-talib"

	"github.com/Alias1177/tradeagent/models"
)

const (
	crossoverGolden = "Golden Cross (EMA21 > SMA50)"
	crossoverDeath  = "Death Cross (EMA21 < SMA50)"
)

// CalculateMovingAverages computes the EMA/SMA hierarchy. The long SMA is
// optional: below longPeriod bars the trend uses the partial ordering only.
func CalculateMovingAverages(closes []float64, emaPeriod, smaPeriod, longPeriod int) (*models.MovingAverageResult, error) {
	required := max(emaPeriod, smaPeriod)
	if err := requireBars(models.IndicatorMovingAverages, required, len(closes)); err != nil {
		return nil, err
	}

	ema := talib.Ema(closes, emaPeriod)
	sma := talib.Sma(closes, smaPeriod)

	res := &models.MovingAverageResult{
		EMA21: last(ema),
		SMA50: last(sma),
	}
	if len(closes) >= longPeriod {
		res.SMA200 = last(talib.Sma(closes, longPeriod))
		res.HasSMA200 = true
	}

	res.Trend, res.Signal = ClassifyTrend(last(closes), res.EMA21, res.SMA50, res.SMA200, res.HasSMA200)

	if len(closes) > required {
		res.Crossover = DetectCrossover(previous(ema), previous(sma), res.EMA21, res.SMA50)
	}

	return res, nil
}

// ClassifyTrend orders price against the averages.
func ClassifyTrend(price, ema, sma, longSMA float64, hasLong bool) (string, models.Signal) {
	switch {
	case hasLong && price > ema && ema > sma && sma > longSMA:
		return models.TrendStrongUp, models.SignalBuy
	case hasLong && price < ema && ema < sma && sma < longSMA:
		return models.TrendStrongDown, models.SignalSell
	case price > ema && ema > sma:
		return models.TrendUp, models.SignalBuy
	case price < ema && ema < sma:
		return models.TrendDown, models.SignalSell
	default:
		return models.TrendSideways, models.SignalNeutral
	}
}

// DetectCrossover reports a fast/slow average cross on the latest bar.
func DetectCrossover(prevFast, prevSlow, fast, slow float64) string {
	switch {
	case prevFast < prevSlow && fast > slow:
		return crossoverGolden
	case prevFast > prevSlow && fast < slow:
		return crossoverDeath
	default:
		return ""
	}
}

// IsGoldenCross reports whether a crossover label is bullish.
func IsGoldenCross(crossover string) bool {
	return crossover == crossoverGolden
}

// IsDeathCross reports whether a crossover label is bearish.
func IsDeathCross(crossover string) bool {
	return crossover == crossoverDeath
}

// CalculateADX computes ADX with the directional indicators.
func CalculateADX(high, low, closes []float64, period int) (*models.ADXResult, error) {
	if err := requireBars(models.IndicatorADX, 2*period, len(closes)); err != nil {
		return nil, err
	}

	adx := last(talib.Adx(high, low, closes, period))
	plusDI := last(talib.PlusDI(high, low, closes, period))
	minusDI := last(talib.MinusDI(high, low, closes, period))

	strength, interpretation := ClassifyADX(adx)
	direction := models.DirectionBearish
	if plusDI > minusDI {
		direction = models.DirectionBullish
	}

	return &models.ADXResult{
		Value:          adx,
		PlusDI:         plusDI,
		MinusDI:        minusDI,
		Strength:       strength,
		Direction:      direction,
		Interpretation: interpretation,
	}, nil
}

// ClassifyADX buckets trend strength.
func ClassifyADX(adx float64) (string, string) {
	switch {
	case adx < 20:
		return models.ADXWeak, "Weak or no trend - avoid trend-following strategies"
	case adx < 40:
		return models.ADXModerate, "Moderate trend strength"
	case adx < 60:
		return models.ADXStrong, "Strong trend - good for trend following"
	default:
		return models.ADXVeryStrong, "Very strong trend - potential exhaustion soon"
	}
}
