package analyze

import (
	"fmt"
	"strings"

	"github.com/Alias1177/tradeagent/models"
)

const (
	minRiskReward           = 1.5
	strongPatternConfidence = 80
)

// buildChecklist evaluates the pre-trade checklist. Risk-dependent flags are
// false when no risk assessment was produced.
func buildChecklist(signal models.TradingSignal, report *models.TechnicalReport, assessment *models.RiskAssessment) models.ExecutionChecklist {
	c := models.ExecutionChecklist{
		PriceActionConfirmed: signal.ConfluenceCount >= 2,
	}

	if report.RSI != nil && report.RSI.Signal != models.SignalNeutral {
		c.MomentumAligned = true
	}
	if report.MACD != nil && report.MACD.Signal != models.SignalNeutral {
		c.MomentumAligned = true
	}
	if report.ATR != nil {
		c.VolatilityAcceptable = report.ATR.Volatility != models.VolatilityExtreme
	}
	if report.ADX != nil {
		c.TrendStrengthOK = report.ADX.Strength != models.ADXWeak
	}
	if assessment != nil {
		c.RiskRewardPositive = assessment.RiskReward.Ratio >= minRiskReward
		c.RiskLimitsOK = assessment.Checks.AllPassed
	}

	c.AllReady = c.PriceActionConfirmed &&
		c.MomentumAligned &&
		c.VolatilityAcceptable &&
		c.TrendStrengthOK &&
		c.RiskRewardPositive &&
		c.RiskLimitsOK
	return c
}

// buildRecommendations returns the prioritised advice lines: entry, risk,
// market conditions, patterns, then the gate verdict.
func buildRecommendations(
	signal models.TradingSignal,
	report *models.TechnicalReport,
	chart models.ChartContext,
	assessment *models.RiskAssessment,
	validation models.QualityValidation,
) []string {
	var recs []string

	switch signal.EntryTrigger {
	case models.TriggerImmediate:
		recs = append(recs, fmt.Sprintf("✓ Entry: %s at current price %.2f", signal.SignalType, signal.EntryPrice))
	case models.TriggerWaitConfirmation:
		recs = append(recs, fmt.Sprintf("⏳ Entry: Wait for confirmation before %s", signal.SignalType))
	default:
		recs = append(recs, fmt.Sprintf("⚠ Entry: Wait for pullback before entering %s", signal.SignalType))
	}

	if assessment != nil {
		recs = append(recs, fmt.Sprintf("📊 Risk/Reward: %v:1 (%s)", assessment.RiskReward.Ratio, assessment.RiskReward.Status))
	}

	if report.ATR != nil {
		if v := report.ATR.Volatility; v == models.VolatilityHigh || v == models.VolatilityExtreme {
			recs = append(recs, fmt.Sprintf("⚡ %s volatility detected - consider reducing position size by 50%%", v))
		}
	}

	if report.MovingAverages != nil {
		trend := report.MovingAverages.Trend
		switch {
		case strings.Contains(trend, "STRONG"):
			recs = append(recs, fmt.Sprintf("📈 %s - favorable conditions for trend following", trend))
		case trend == models.TrendSideways:
			recs = append(recs, "↔ Sideways market - wait for breakout or reduce position size")
		}
	}

	var strong []string
	for _, p := range chart.Patterns {
		if p.Confidence >= strongPatternConfidence {
			strong = append(strong, p.Name)
		}
	}
	if len(strong) > 0 {
		if len(strong) > 2 {
			strong = strong[:2]
		}
		recs = append(recs, "🎯 Strong patterns detected: "+strings.Join(strong, ", "))
	}

	if !validation.Passed {
		recs = append(recs, "⛔ Signal quality below threshold - recommend SKIP this trade")
		if len(validation.Issues) > 0 {
			issues := validation.Issues
			if len(issues) > 2 {
				issues = issues[:2]
			}
			recs = append(recs, "Issues: "+strings.Join(issues, ", "))
		}
	}

	if validation.Passed && assessment != nil {
		if assessment.Checks.AllPassed {
			recs = append(recs, "✅ All checks passed - This setup meets professional trading standards")
		} else {
			recs = append(recs, "⚠ Risk limits exceeded - Skip or reduce position size")
		}
	}

	return recs
}
