package chart

import (
	"math"
	"sort"

	"github.com/Alias1177/tradeagent/models"
)

const (
	DefaultLevelLookback = 50
	touchTolerance       = 0.02
	minLevelDistance     = 0.01
	maxLevels            = 10
	maxStrength          = 10
)

// DetectLevels finds swing highs (resistance) and swing lows (support) over
// the last lookback bars. A swing point must exceed the two bars on either
// side. Strength is twice the number of closes within 2% of the level, capped
// at 10. Levels within 1% of a stronger-or-earlier one are dropped.
func DetectLevels(series models.PriceSeries, lookback int) []models.SupportResistance {
	if lookback <= 0 {
		lookback = DefaultLevelLookback
	}
	recent := series.Tail(lookback)
	high, low, closes := recent.High, recent.Low, recent.Close

	var levels []models.SupportResistance
	for i := 2; i < len(high)-2; i++ {
		if high[i] > high[i-1] && high[i] > high[i-2] && high[i] > high[i+1] && high[i] > high[i+2] {
			levels = append(levels, newLevel(high[i], models.LevelResistance, closes))
		}
	}
	for i := 2; i < len(low)-2; i++ {
		if low[i] < low[i-1] && low[i] < low[i-2] && low[i] < low[i+1] && low[i] < low[i+2] {
			levels = append(levels, newLevel(low[i], models.LevelSupport, closes))
		}
	}

	levels = dedupeLevels(levels)
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Strength > levels[j].Strength
	})
	if len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}
	return levels
}

func newLevel(price float64, kind string, closes []float64) models.SupportResistance {
	touches := countTouches(closes, price)
	strength := touches * 2
	if strength > maxStrength {
		strength = maxStrength
	}
	return models.SupportResistance{
		Price:    price,
		Strength: strength,
		Type:     kind,
		Touches:  touches,
	}
}

func countTouches(closes []float64, level float64) int {
	lower := level * (1 - touchTolerance)
	upper := level * (1 + touchTolerance)
	n := 0
	for _, c := range closes {
		if c >= lower && c <= upper {
			n++
		}
	}
	return n
}

func dedupeLevels(levels []models.SupportResistance) []models.SupportResistance {
	filtered := make([]models.SupportResistance, 0, len(levels))
	for _, level := range levels {
		keep := true
		for _, existing := range filtered {
			if math.Abs(level.Price-existing.Price)/existing.Price < minLevelDistance {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, level)
		}
	}
	return filtered
}

// NearestLevels returns the highest support below price and the lowest
// resistance above it. Either may be nil.
func NearestLevels(levels []models.SupportResistance, price float64) (support, resistance *models.PriceLevel) {
	for _, level := range levels {
		switch {
		case level.Type == models.LevelSupport && level.Price < price:
			if support == nil || level.Price > support.Price {
				support = &models.PriceLevel{Price: level.Price, Strength: level.Strength}
			}
		case level.Type == models.LevelResistance && level.Price > price:
			if resistance == nil || level.Price < resistance.Price {
				resistance = &models.PriceLevel{Price: level.Price, Strength: level.Strength}
			}
		}
	}
	return support, resistance
}
