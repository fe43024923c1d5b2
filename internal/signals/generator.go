package signals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/internal/indicators"
	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

// Options controls the quality gate.
type Options struct {
	MinConfluence int
	MinQuality    float64
}

// DefaultOptions returns the standard gate: two confluences and a quality
// score of 50.
func DefaultOptions() Options {
	return Options{MinConfluence: 2, MinQuality: 50}
}

// Generator turns a technical report and chart context into a trading
// decision. It is stateless and safe for concurrent use.
type Generator struct {
	opts   Options
	logger zerolog.Logger
}

// NewGenerator creates a confluence signal generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{
		opts:   opts,
		logger: log.With().Str("component", "signal_generator").Logger(),
	}
}

// tally accumulates directional votes and the reasons behind them.
type tally struct {
	bullish  int
	bearish  int
	reasons  []string
	warnings []string
}

func (t *tally) bull(weight int, reason string) {
	t.bullish += weight
	t.reasons = append(t.reasons, reason)
}

func (t *tally) bear(weight int, reason string) {
	t.bearish += weight
	t.reasons = append(t.reasons, reason)
}

func (t *tally) confirm(reason string) {
	t.reasons = append(t.reasons, reason)
}

func (t *tally) warn(warning string) {
	t.warnings = append(t.warnings, warning)
}

// Generate scores every available indicator, pattern and level and returns
// the resulting signal. Missing indicators simply do not vote.
func (g *Generator) Generate(report *models.TechnicalReport, chart models.ChartContext, price float64) models.TradingSignal {
	t := &tally{}

	scoreTrend(t, report.MovingAverages)
	scoreMomentum(t, report)
	adxValue := scoreTrendStrength(t, report.ADX)
	scoreVolume(t, report.Volume)
	scoreChart(t, chart, price)

	if report.Fibonacci != nil && indicators.IsKeyFibonacciLevel(report.Fibonacci.NearestLevel) {
		t.confirm(fmt.Sprintf("Price near Fibonacci %s%%", report.Fibonacci.NearestLevel))
	}
	if report.ATR != nil && (report.ATR.Volatility == models.VolatilityHigh || report.ATR.Volatility == models.VolatilityExtreme) {
		t.warn(fmt.Sprintf("%s volatility - wider stops recommended", report.ATR.Volatility))
	}

	missing := make([]string, 0, len(report.Unavailable))
	for name := range report.Unavailable {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	for _, name := range missing {
		t.warn(fmt.Sprintf("Indicator unavailable: %s", name))
	}

	confluences := len(t.reasons)
	signalType, confidence := decide(t.bullish, t.bearish, confluences)

	volumeSignal := models.VolumeSignal("")
	if report.Volume != nil {
		volumeSignal = report.Volume.Signal
	}
	quality := QualityScore(confluences, adxValue, volumeSignal, len(chart.Patterns))

	signal := models.TradingSignal{
		SignalType:      signalType,
		Confidence:      utils.Round(confidence, 2),
		Strength:        strengthFor(quality),
		QualityScore:    utils.Round(quality, 2),
		ConfluenceCount: confluences,
		EntryPrice:      price,
		EntryTrigger:    triggerFor(confluences, quality),
		Reasons:         t.reasons,
		Warnings:        t.warnings,
		PatternCount:    len(chart.Patterns),
	}
	if signal.Reasons == nil {
		signal.Reasons = []string{}
	}
	if signal.Warnings == nil {
		signal.Warnings = []string{}
	}
	signal.EntryDescription = entryDescription(signalType, report, signal.Reasons)

	g.logger.Debug().
		Str("signal", string(signal.SignalType)).
		Int("bullish", t.bullish).
		Int("bearish", t.bearish).
		Int("confluences", confluences).
		Float64("quality", signal.QualityScore).
		Msg("Signal generated")

	return signal
}

func scoreTrend(t *tally, ma *models.MovingAverageResult) {
	if ma == nil {
		return
	}
	switch {
	case strings.Contains(ma.Trend, models.TrendUp):
		t.bull(2, "Trend: "+ma.Trend)
	case strings.Contains(ma.Trend, models.TrendDown):
		t.bear(2, "Trend: "+ma.Trend)
	default:
		t.warn("Market in sideways consolidation")
	}

	switch {
	case indicators.IsGoldenCross(ma.Crossover):
		t.bull(1, ma.Crossover)
	case indicators.IsDeathCross(ma.Crossover):
		t.bear(1, ma.Crossover)
	}
}

func scoreMomentum(t *tally, report *models.TechnicalReport) {
	if rsi := report.RSI; rsi != nil {
		switch {
		case rsi.Signal == models.SignalBuy:
			t.bull(1, fmt.Sprintf("RSI oversold (%.1f)", rsi.Value))
		case rsi.Signal == models.SignalSell:
			t.bear(1, fmt.Sprintf("RSI overbought (%.1f)", rsi.Value))
		case rsi.Value >= 40 && rsi.Value <= 60:
			t.confirm(fmt.Sprintf("RSI neutral (%.1f)", rsi.Value))
		}
	}

	if macd := report.MACD; macd != nil {
		switch macd.Signal {
		case models.SignalBuy:
			t.bull(1, "MACD: "+macd.Interpretation)
		case models.SignalSell:
			t.bear(1, "MACD: "+macd.Interpretation)
		}
	}

	if bb := report.Bollinger; bb != nil {
		switch bb.Signal {
		case models.SignalBuy:
			t.bull(1, "Price at lower Bollinger Band")
		case models.SignalSell:
			t.bear(1, "Price at upper Bollinger Band")
		}
		if strings.Contains(strings.ToLower(bb.Interpretation), "squeeze") {
			t.warn("Volatility squeeze - await breakout direction")
		}
	}

	if stoch := report.Stochastic; stoch != nil {
		switch stoch.Signal {
		case models.SignalBuy:
			t.bull(1, "Stochastic: "+stoch.Interpretation)
		case models.SignalSell:
			t.bear(1, "Stochastic: "+stoch.Interpretation)
		}
	}
}

// scoreTrendStrength votes on a strong ADX and returns the ADX value used by
// the quality score.
func scoreTrendStrength(t *tally, adx *models.ADXResult) float64 {
	if adx == nil {
		return 0
	}
	switch adx.Strength {
	case models.ADXStrong, models.ADXVeryStrong:
		if adx.Direction == models.DirectionBullish {
			t.bull(1, fmt.Sprintf("ADX: Strong uptrend (%.1f)", adx.Value))
		} else {
			t.bear(1, fmt.Sprintf("ADX: Strong downtrend (%.1f)", adx.Value))
		}
	case models.ADXWeak:
		t.warn(fmt.Sprintf("Weak trend strength (ADX %.1f)", adx.Value))
	}
	return adx.Value
}

func scoreVolume(t *tally, volume *models.VolumeResult) {
	if volume == nil {
		return
	}
	switch volume.Signal {
	case models.VolumeConfirm:
		t.confirm("High volume confirmation")
	case models.VolumeCaution:
		t.warn("Low volume - weak confirmation")
	}
}

func scoreChart(t *tally, chart models.ChartContext, price float64) {
	for _, p := range chart.Patterns {
		switch p.Signal {
		case models.SignalBuy:
			t.bull(1, "Pattern: "+p.Name)
		case models.SignalSell:
			t.bear(1, "Pattern: "+p.Name)
		}
	}

	if price <= 0 {
		return
	}
	// Signed distances: a level already crossed counts as "at" the level.
	if s := chart.NearestSupport; s != nil && (price-s.Price)/price*100 < 1 {
		t.bull(1, fmt.Sprintf("Price at support level (%.2f)", s.Price))
	}
	if r := chart.NearestResistance; r != nil && (r.Price-price)/price*100 < 1 {
		t.bear(1, fmt.Sprintf("Price at resistance level (%.2f)", r.Price))
	}
}

func decide(bullish, bearish, confluences int) (models.SignalType, float64) {
	switch {
	case bullish > bearish:
		return models.SignalTypeBuy, confidence(bullish, bearish, confluences)
	case bearish > bullish:
		return models.SignalTypeSell, confidence(bearish, bullish, confluences)
	default:
		return models.SignalTypeHold, 40
	}
}

func confidence(winner, loser, confluences int) float64 {
	raw := float64(winner)/float64(max(1, loser))*30 + float64(confluences)*10
	return math.Min(100, raw)
}

// QualityScore rates a setup from 0 to 100 from its confluence count, ADX,
// volume confirmation and number of detected patterns.
func QualityScore(confluences int, adx float64, volume models.VolumeSignal, patterns int) float64 {
	score := math.Min(float64(confluences)*8, 40)

	switch {
	case adx > 40:
		score += 30
	case adx > 25:
		score += 20
	case adx > 15:
		score += 10
	}

	switch volume {
	case models.VolumeConfirm:
		score += 15
	case models.VolumeNeutral:
		score += 7
	}

	score += math.Min(float64(patterns)*5, 15)

	return utils.Clamp(score, 0, 100)
}

func strengthFor(quality float64) models.Strength {
	switch {
	case quality >= 80:
		return models.StrengthStrong
	case quality >= 60:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

func triggerFor(confluences int, quality float64) models.EntryTrigger {
	switch {
	case confluences >= 4 && quality >= 70:
		return models.TriggerImmediate
	case confluences >= 2:
		return models.TriggerWaitConfirmation
	default:
		return models.TriggerPullback
	}
}

func entryDescription(signalType models.SignalType, report *models.TechnicalReport, reasons []string) string {
	var ema, rsi float64
	rsi = 50
	if report.MovingAverages != nil {
		ema = report.MovingAverages.EMA21
	}
	if report.RSI != nil {
		rsi = report.RSI.Value
	}

	var parts []string
	switch signalType {
	case models.SignalTypeBuy:
		parts = append(parts, fmt.Sprintf("Price above EMA21 (%.2f)", ema), fmt.Sprintf("RSI: %.1f", rsi))
	case models.SignalTypeSell:
		parts = append(parts, fmt.Sprintf("Price below EMA21 (%.2f)", ema), fmt.Sprintf("RSI: %.1f", rsi))
	default:
		parts = append(parts, "No clear directional bias")
	}

	if len(reasons) > 0 {
		top := reasons[:min(2, len(reasons))]
		parts = append(parts, "Confluences: "+strings.Join(top, ", "))
	}

	return strings.Join(parts, " | ")
}
