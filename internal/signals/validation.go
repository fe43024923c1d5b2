package signals

import (
	"fmt"
	"strings"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

// Validate applies the quality gate. The gate passes iff the signal has
// enough confluences, a high enough quality score and no critical warning.
func (g *Generator) Validate(signal models.TradingSignal) models.QualityValidation {
	issues := []string{}

	if signal.ConfluenceCount < g.opts.MinConfluence {
		issues = append(issues, fmt.Sprintf("Insufficient confluences (%d < %d)", signal.ConfluenceCount, g.opts.MinConfluence))
	}
	if signal.QualityScore < g.opts.MinQuality {
		issues = append(issues, fmt.Sprintf("Quality score too low (%.2f < %.2f)", signal.QualityScore, g.opts.MinQuality))
	}
	if critical := CriticalWarnings(signal.Warnings); len(critical) > 0 {
		issues = append(issues, "Critical warnings present: "+strings.Join(critical, ", "))
	}

	result := models.QualityValidation{
		Passed:         len(issues) == 0,
		Issues:         issues,
		Recommendation: models.RecommendationSkip,
	}
	if result.Passed {
		result.Recommendation = models.RecommendationTrade
	}
	return result
}

// CriticalWarnings returns the warnings that block a trade.
func CriticalWarnings(warnings []string) []string {
	var critical []string
	for _, w := range warnings {
		upper := strings.ToUpper(w)
		if strings.Contains(upper, "EXTREME") || strings.Contains(upper, "CAUTION") {
			critical = append(critical, w)
		}
	}
	return critical
}

// CheckAlignment reports whether at least two of the daily, 4h and 1h
// signals agree on a direction.
func CheckAlignment(daily, h4, h1 models.TradingSignal) models.Alignment {
	var buys, sells int
	for _, s := range []models.TradingSignal{daily, h4, h1} {
		switch s.SignalType {
		case models.SignalTypeBuy:
			buys++
		case models.SignalTypeSell:
			sells++
		}
	}

	result := models.Alignment{
		AverageConfidence: utils.Round((daily.Confidence+h4.Confidence+h1.Confidence)/3, 2),
		Timeframes: map[string]models.SignalType{
			"daily": daily.SignalType,
			"h4":    h4.SignalType,
			"h1":    h1.SignalType,
		},
	}

	switch {
	case buys >= 2:
		result.Aligned = true
		result.Alignment = models.AlignmentBullish
		result.Recommendation = "Strong multi-timeframe BUY alignment"
	case sells >= 2:
		result.Aligned = true
		result.Alignment = models.AlignmentBearish
		result.Recommendation = "Strong multi-timeframe SELL alignment"
	default:
		result.Alignment = models.AlignmentMixed
		result.Recommendation = "Timeframes not aligned - wait for clarity"
	}
	return result
}
