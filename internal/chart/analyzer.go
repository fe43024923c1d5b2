// Package chart derives chart context (candlestick patterns and
// support/resistance levels) from OHLC bars.
package chart

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/models"
)

// Analyzer is the default chart-context collaborator. Image bytes are
// accepted but recognition runs on the OHLC series only.
type Analyzer struct {
	lookback int
	logger   zerolog.Logger
}

// NewAnalyzer creates an analyzer scanning the last lookback bars for
// levels. A non-positive lookback uses DefaultLevelLookback.
func NewAnalyzer(lookback int) *Analyzer {
	if lookback <= 0 {
		lookback = DefaultLevelLookback
	}
	return &Analyzer{
		lookback: lookback,
		logger:   log.With().Str("component", "chart_analyzer").Logger(),
	}
}

// Analyze returns patterns completed by the last bar and the nearest levels
// around the last close.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, series models.PriceSeries) (models.ChartContext, error) {
	if err := ctx.Err(); err != nil {
		return models.ChartContext{}, err
	}
	if err := series.Validate(); err != nil {
		return models.ChartContext{}, err
	}
	if len(image) > 0 {
		a.logger.Debug().Int("bytes", len(image)).Msg("Chart image supplied, analysing OHLC series")
	}

	levels := DetectLevels(series, a.lookback)
	support, resistance := NearestLevels(levels, series.LastClose())
	patterns := DetectPatterns(series)

	a.logger.Debug().
		Int("patterns", len(patterns)).
		Int("levels", len(levels)).
		Bool("has_support", support != nil).
		Bool("has_resistance", resistance != nil).
		Msg("Chart context derived")

	return models.ChartContext{
		Patterns:          patterns,
		NearestSupport:    support,
		NearestResistance: resistance,
		Levels:            levels,
	}, nil
}
