package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/tradeagent/models"
)

// CalculateBollingerBands computes SMA-based bands with population deviation.
func CalculateBollingerBands(closes []float64, period int, deviation float64) (*models.BollingerResult, error) {
	if err := requireBars(models.IndicatorBollinger, period, len(closes)); err != nil {
		return nil, err
	}

	upper, middle, lower := talib.BBands(closes, period, deviation, deviation, talib.SMA)

	res := &models.BollingerResult{
		Upper:     last(upper),
		Middle:    last(middle),
		Lower:     last(lower),
		Bandwidth: last(upper) - last(lower),
	}
	res.Position, res.Interpretation, res.Signal = InterpretBollinger(last(closes), res.Upper, res.Middle, res.Lower)

	return res, nil
}

// InterpretBollinger locates price inside the bands. Position is the percent
// of band width above the lower band (50 for a zero-width band).
func InterpretBollinger(price, upper, middle, lower float64) (float64, string, models.Signal) {
	bandwidth := upper - lower
	position := 50.0
	if bandwidth > 0 {
		position = (price - lower) / bandwidth * 100
	}

	switch {
	case price >= upper:
		return position, "Price at upper band - overbought", models.SignalSell
	case price <= lower:
		return position, "Price at lower band - oversold", models.SignalBuy
	case bandwidth < middle*0.02:
		return position, "Volatility squeeze - breakout pending", models.SignalNeutral
	default:
		return position, fmt.Sprintf("Price at %.1f%% of band width", position), models.SignalNeutral
	}
}

// CalculateATR computes Wilder's ATR and buckets it relative to price.
func CalculateATR(high, low, closes []float64, period int) (*models.ATRResult, error) {
	if err := requireBars(models.IndicatorATR, period+1, len(closes)); err != nil {
		return nil, err
	}

	atr := last(talib.Atr(high, low, closes, period))
	percent := atr / last(closes) * 100
	volatility, interpretation := ClassifyVolatility(percent)

	return &models.ATRResult{
		Value:          atr,
		Percent:        percent,
		Volatility:     volatility,
		Interpretation: interpretation,
	}, nil
}

// ClassifyVolatility buckets ATR expressed as a percent of price.
func ClassifyVolatility(atrPercent float64) (string, string) {
	switch {
	case atrPercent < 1:
		return models.VolatilityLow, "Low volatility - tight stops possible"
	case atrPercent < 3:
		return models.VolatilityNormal, "Normal volatility"
	case atrPercent < 5:
		return models.VolatilityHigh, "High volatility - wider stops needed"
	default:
		return models.VolatilityExtreme, "Extreme volatility - caution advised"
	}
}
