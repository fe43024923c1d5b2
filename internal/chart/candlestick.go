package chart

import (
	"math"

	"github.com/Alias1177/tradeagent/models"
)

const (
	PatternReversal     = "REVERSAL"
	PatternContinuation = "CONTINUATION"
)

// patternConfidence mirrors the fixed magnitude TA-Lib style recognisers
// report for a match.
const patternConfidence = 100.0

type candleShape struct {
	models.Candle
	body  float64
	rng   float64
	upper float64
	lower float64
}

func shape(c models.Candle) candleShape {
	return candleShape{
		Candle: c,
		body:   math.Abs(c.Close - c.Open),
		rng:    c.High - c.Low,
		upper:  c.High - math.Max(c.Open, c.Close),
		lower:  math.Min(c.Open, c.Close) - c.Low,
	}
}

func (c candleShape) bullish() bool { return c.Close > c.Open }
func (c candleShape) bearish() bool { return c.Close < c.Open }
func (c candleShape) midpoint() float64 {
	return (c.Open + c.Close) / 2
}

// DetectPatterns recognises candlestick formations completed by the last bar.
// Patterns are reported in a fixed order so the output is deterministic.
func DetectPatterns(series models.PriceSeries) []models.ChartPattern {
	n := series.Len()
	patterns := []models.ChartPattern{}
	if n < 3 {
		return patterns
	}

	c1 := shape(series.Candle(n - 3))
	c2 := shape(series.Candle(n - 2))
	c3 := shape(series.Candle(n - 1))

	add := func(name, kind string, signal models.Signal) {
		patterns = append(patterns, models.ChartPattern{
			Name:       name,
			Type:       kind,
			Confidence: patternConfidence,
			Signal:     signal,
		})
	}

	// Hammer: long lower shadow after a down bar
	if c3.body > 0 && c3.lower >= c3.body*2 && c3.upper <= c3.body*0.5 && c2.bearish() {
		add("Hammer", PatternReversal, models.SignalBuy)
	}

	if c3.bullish() && c2.bearish() && c3.Open <= c2.Close && c3.Close >= c2.Open && c3.body > c2.body {
		add("Bullish Engulfing", PatternReversal, models.SignalBuy)
	}
	if c3.bearish() && c2.bullish() && c3.Open >= c2.Close && c3.Close <= c2.Open && c3.body > c2.body {
		add("Bearish Engulfing", PatternReversal, models.SignalSell)
	}

	if c1.bearish() && c2.body < c1.body*0.3 && c3.bullish() && c3.Close > c1.midpoint() && math.Max(c2.Open, c2.Close) < c1.Close {
		add("Morning Star", PatternReversal, models.SignalBuy)
	}
	if c1.bullish() && c2.body < c1.body*0.3 && c3.bearish() && c3.Close < c1.midpoint() && math.Min(c2.Open, c2.Close) > c1.Close {
		add("Evening Star", PatternReversal, models.SignalSell)
	}

	if c3.rng > 0 && c3.body <= c3.rng*0.1 {
		add("Doji", PatternReversal, models.SignalNeutral)
	}

	// Shooting star: long upper shadow after an up bar
	if c3.body > 0 && c3.upper >= c3.body*2 && c3.lower <= c3.body*0.5 && c2.bullish() {
		add("Shooting Star", PatternReversal, models.SignalSell)
	}

	if c1.bullish() && c2.bullish() && c3.bullish() &&
		c2.Close > c1.Close && c3.Close > c2.Close &&
		c2.Open >= c1.Open && c2.Open <= c1.Close &&
		c3.Open >= c2.Open && c3.Open <= c2.Close {
		add("Three White Soldiers", PatternContinuation, models.SignalBuy)
	}
	if c1.bearish() && c2.bearish() && c3.bearish() &&
		c2.Close < c1.Close && c3.Close < c2.Close &&
		c2.Open <= c1.Open && c2.Open >= c1.Close &&
		c3.Open <= c2.Open && c3.Open >= c2.Close {
		add("Three Black Crows", PatternContinuation, models.SignalSell)
	}

	if c2.bearish() && c3.bullish() && c3.Open < c2.Low && c3.Close > c2.midpoint() && c3.Close < c2.Open {
		add("Piercing Pattern", PatternReversal, models.SignalBuy)
	}
	if c2.bullish() && c3.bearish() && c3.Open > c2.High && c3.Close < c2.midpoint() && c3.Close > c2.Open {
		add("Dark Cloud Cover", PatternReversal, models.SignalSell)
	}

	return patterns
}
