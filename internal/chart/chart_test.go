package chart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Alias1177/tradeagent/models"
)

func bar(o, c float64) models.Candle {
	return models.Candle{Open: o, Close: c, High: math.Max(o, c) + 0.1, Low: math.Min(o, c) - 0.1, Volume: 1}
}

func ohlc(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c, Volume: 1}
}

func hasPattern(patterns []models.ChartPattern, name string) bool {
	for _, p := range patterns {
		if p.Name == name {
			return true
		}
	}
	return false
}

func TestDetectPatterns(t *testing.T) {
	tests := []struct {
		name    string
		candles []models.Candle
		want    string
		signal  models.Signal
	}{
		{"hammer", []models.Candle{bar(104, 106), ohlc(105, 105.1, 99.9, 100), ohlc(100, 101.2, 97, 101)}, "Hammer", models.SignalBuy},
		{"bullish engulfing", []models.Candle{bar(102, 101), ohlc(101, 101.2, 99.8, 100), ohlc(99.9, 101.6, 99.8, 101.5)}, "Bullish Engulfing", models.SignalBuy},
		{"bearish engulfing", []models.Candle{bar(99, 100), bar(100, 101), bar(101.1, 99.5)}, "Bearish Engulfing", models.SignalSell},
		{"morning star", []models.Candle{bar(110, 100), bar(99, 99.5), bar(100, 106)}, "Morning Star", models.SignalBuy},
		{"evening star", []models.Candle{bar(100, 110), bar(111, 110.5), bar(110, 104)}, "Evening Star", models.SignalSell},
		{"doji", []models.Candle{bar(100, 101), bar(101, 100), ohlc(100, 101, 99, 100.05)}, "Doji", models.SignalNeutral},
		{"shooting star", []models.Candle{bar(98, 97), bar(99, 100), ohlc(100, 102, 99.4, 99.5)}, "Shooting Star", models.SignalSell},
		{"three white soldiers", []models.Candle{bar(100, 102), bar(101, 104), bar(103, 106)}, "Three White Soldiers", models.SignalBuy},
		{"three black crows", []models.Candle{bar(106, 104), bar(105, 102), bar(103, 100)}, "Three Black Crows", models.SignalSell},
		{"piercing", []models.Candle{bar(108, 106), ohlc(105, 105.5, 99.5, 100), bar(99, 103)}, "Piercing Pattern", models.SignalBuy},
		{"dark cloud", []models.Candle{bar(97, 99), ohlc(100, 105.5, 99.5, 105), bar(106, 102)}, "Dark Cloud Cover", models.SignalSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := DetectPatterns(models.NewPriceSeries(tt.candles))
			if !hasPattern(patterns, tt.want) {
				t.Fatalf("DetectPatterns() = %+v, want %s", patterns, tt.want)
			}
			for _, p := range patterns {
				if p.Name == tt.want && (p.Signal != tt.signal || p.Confidence != 100) {
					t.Errorf("%s = %+v, want signal %s", tt.want, p, tt.signal)
				}
				if p.Confidence < 0 || p.Confidence > 100 {
					t.Errorf("confidence %v out of range", p.Confidence)
				}
			}
		})
	}
}

func TestDetectPatternsShortSeries(t *testing.T) {
	patterns := DetectPatterns(models.NewPriceSeries([]models.Candle{bar(1, 2), bar(2, 3)}))
	if patterns == nil || len(patterns) != 0 {
		t.Errorf("DetectPatterns(2 bars) = %#v, want empty slice", patterns)
	}
}

func levelSeries() models.PriceSeries {
	highs := []float64{10, 11, 15, 11, 10, 11, 12, 11, 10}
	lows := []float64{9, 8, 9, 8.5, 9, 5, 9, 9.5, 9.5}
	closes := []float64{10, 11.9, 12, 11, 10, 6, 10, 12.1, 10.5}
	candles := make([]models.Candle, len(closes))
	for i := range closes {
		candles[i] = models.Candle{Open: closes[i], High: highs[i], Low: lows[i], Close: closes[i], Volume: 1}
	}
	return models.NewPriceSeries(candles)
}

func TestDetectLevels(t *testing.T) {
	levels := DetectLevels(levelSeries(), 50)

	want := []models.SupportResistance{
		{Price: 12, Strength: 6, Type: models.LevelResistance, Touches: 3},
		{Price: 15, Strength: 0, Type: models.LevelResistance, Touches: 0},
		{Price: 5, Strength: 0, Type: models.LevelSupport, Touches: 0},
	}
	if len(levels) != len(want) {
		t.Fatalf("DetectLevels() = %+v, want %+v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("level %d = %+v, want %+v", i, levels[i], want[i])
		}
	}

	support, resistance := NearestLevels(levels, 10.5)
	if support == nil || support.Price != 5 {
		t.Errorf("nearest support = %+v, want 5", support)
	}
	if resistance == nil || resistance.Price != 12 || resistance.Strength != 6 {
		t.Errorf("nearest resistance = %+v, want 12", resistance)
	}
}

func TestDedupeLevels(t *testing.T) {
	levels := dedupeLevels([]models.SupportResistance{
		{Price: 100, Strength: 4, Type: models.LevelResistance},
		{Price: 100.5, Strength: 2, Type: models.LevelSupport},
		{Price: 102, Strength: 2, Type: models.LevelResistance},
	})
	if len(levels) != 2 || levels[0].Price != 100 || levels[1].Price != 102 {
		t.Errorf("dedupeLevels() = %+v", levels)
	}
}

func TestNearestLevelsEmpty(t *testing.T) {
	support, resistance := NearestLevels(nil, 100)
	if support != nil || resistance != nil {
		t.Errorf("NearestLevels(nil) = %v, %v", support, resistance)
	}
}

func TestAnalyzer(t *testing.T) {
	a := NewAnalyzer(0)

	ctx, err := a.Analyze(context.Background(), []byte("png"), levelSeries())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if ctx.SupportPrice() == nil || *ctx.SupportPrice() != 5 {
		t.Errorf("support = %v", ctx.SupportPrice())
	}
	if ctx.ResistancePrice() == nil || *ctx.ResistancePrice() != 12 {
		t.Errorf("resistance = %v", ctx.ResistancePrice())
	}

	var invalid *models.InvalidSeriesError
	if _, err := a.Analyze(context.Background(), nil, models.PriceSeries{}); !errors.As(err, &invalid) {
		t.Errorf("empty series error = %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Analyze(cancelled, nil, levelSeries()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context error = %v", err)
	}
}
