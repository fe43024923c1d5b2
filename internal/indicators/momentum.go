package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/Alias1177/tradeagent/models"
)

// CalculateRSI computes Wilder's RSI over closes.
func CalculateRSI(closes []float64, period int) (*models.RSIResult, error) {
	if err := requireBars(models.IndicatorRSI, period+1, len(closes)); err != nil {
		return nil, err
	}

	rsi := last(talib.Rsi(closes, period))
	interpretation, signal := InterpretRSI(rsi)

	return &models.RSIResult{
		Value:          rsi,
		Interpretation: interpretation,
		Signal:         signal,
	}, nil
}

// InterpretRSI maps an RSI reading to its zone.
func InterpretRSI(rsi float64) (string, models.Signal) {
	switch {
	case rsi > 70:
		return fmt.Sprintf("Overbought (%.2f)", rsi), models.SignalSell
	case rsi < 30:
		return fmt.Sprintf("Oversold (%.2f)", rsi), models.SignalBuy
	case rsi >= 40 && rsi <= 60:
		return fmt.Sprintf("Neutral zone (%.2f)", rsi), models.SignalNeutral
	default:
		return fmt.Sprintf("Moderate (%.2f)", rsi), models.SignalNeutral
	}
}

// CalculateMACD computes MACD line, signal line and histogram. The crossover
// check needs one bar more than the indicator itself.
func CalculateMACD(closes []float64, fast, slow, signalPeriod int) (*models.MACDResult, error) {
	required := slow + signalPeriod - 1
	if err := requireBars(models.IndicatorMACD, required, len(closes)); err != nil {
		return nil, err
	}

	macd, signalLine, hist := talib.Macd(closes, fast, slow, signalPeriod)

	prevHist, hasPrev := 0.0, len(closes) > required
	if hasPrev {
		prevHist = previous(hist)
	}

	interpretation, signal := InterpretMACD(last(macd), last(signalLine), last(hist), prevHist, hasPrev)

	return &models.MACDResult{
		MACD:           last(macd),
		SignalLine:     last(signalLine),
		Histogram:      last(hist),
		Interpretation: interpretation,
		Signal:         signal,
	}, nil
}

// InterpretMACD classifies a MACD reading. Crossovers take precedence over
// momentum.
func InterpretMACD(macd, signalLine, hist, prevHist float64, hasPrev bool) (string, models.Signal) {
	switch {
	case hasPrev && hist > 0 && prevHist <= 0:
		return "Bullish crossover", models.SignalBuy
	case hasPrev && hist < 0 && prevHist >= 0:
		return "Bearish crossover", models.SignalSell
	case macd > signalLine && hist > 0:
		return "Bullish momentum", models.SignalBuy
	case macd < signalLine && hist < 0:
		return "Bearish momentum", models.SignalSell
	default:
		return "Neutral", models.SignalNeutral
	}
}

// CalculateStochastic computes the slow stochastic (%K smoothed, %D of %K).
func CalculateStochastic(high, low, closes []float64, kPeriod, slowKPeriod, dPeriod int) (*models.StochasticResult, error) {
	required := kPeriod + slowKPeriod + dPeriod - 2
	if err := requireBars(models.IndicatorStochastic, required, len(closes)); err != nil {
		return nil, err
	}

	slowK, slowD := talib.Stoch(high, low, closes, kPeriod, slowKPeriod, talib.SMA, dPeriod, talib.SMA)

	k, d := last(slowK), last(slowD)
	prevK, prevD := k, d
	if len(closes) > required {
		prevK, prevD = previous(slowK), previous(slowD)
	}

	interpretation, signal := InterpretStochastic(k, d, prevK, prevD)

	return &models.StochasticResult{
		K:              k,
		D:              d,
		Interpretation: interpretation,
		Signal:         signal,
	}, nil
}

// InterpretStochastic classifies %K/%D, preferring crossovers inside the
// extreme zones.
func InterpretStochastic(k, d, prevK, prevD float64) (string, models.Signal) {
	switch {
	case prevK < prevD && k > d && k < 20:
		return "Bullish crossover in oversold zone", models.SignalBuy
	case prevK > prevD && k < d && k > 80:
		return "Bearish crossover in overbought zone", models.SignalSell
	case k > 80:
		return "Overbought", models.SignalSell
	case k < 20:
		return "Oversold", models.SignalBuy
	default:
		return "Neutral", models.SignalNeutral
	}
}
