// Package analyze orchestrates a full trading analysis: indicators, chart
// context, confluence signal, quality gate, risk cascade, checklist,
// recommendations and narrative.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/internal/indicators"
	"github.com/Alias1177/tradeagent/internal/signals"
	"github.com/Alias1177/tradeagent/internal/trading/risk"
	"github.com/Alias1177/tradeagent/models"
)

// NarrativePlaceholder replaces the narrative when the narrator is missing,
// fails or times out.
const NarrativePlaceholder = "Analysis unavailable"

const (
	DefaultSymbol    = "UNKNOWN"
	DefaultTimeframe = "1H"
)

// ChartAnalyzer derives patterns and support/resistance for a series. The
// image may be nil.
type ChartAnalyzer interface {
	Analyze(ctx context.Context, image []byte, series models.PriceSeries) (models.ChartContext, error)
}

// Narrator produces a free-text commentary for a finished analysis.
type Narrator interface {
	Narrate(ctx context.Context, req models.NarrativeRequest) (string, error)
}

// Options bounds the time spent waiting on collaborators.
type Options struct {
	ChartTimeout     time.Duration
	NarrativeTimeout time.Duration
	HistoryCapacity  int
}

// DefaultOptions returns 5s chart and 15s narrative timeouts.
func DefaultOptions() Options {
	return Options{
		ChartTimeout:     5 * time.Second,
		NarrativeTimeout: 15 * time.Second,
		HistoryCapacity:  DefaultHistoryCapacity,
	}
}

// Request is a single analysis call. Capital and RiskPercent override the
// risk manager's base parameters for this call only.
type Request struct {
	Symbol      string
	Timeframe   string
	Series      models.PriceSeries
	Image       []byte
	Capital     *float64
	RiskPercent *float64
}

// Agent runs the analysis pipeline. It is safe for concurrent use; the only
// shared mutable state lives in the risk manager and the history buffer.
type Agent struct {
	engine    *indicators.Engine
	chart     ChartAnalyzer
	generator *signals.Generator
	risk      *risk.Manager
	narrator  Narrator
	opts      Options
	history   *history
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAgent wires the pipeline. chart and narrator may be nil.
func NewAgent(engine *indicators.Engine, chart ChartAnalyzer, generator *signals.Generator, riskManager *risk.Manager, narrator Narrator, opts Options) *Agent {
	defaults := DefaultOptions()
	if opts.ChartTimeout <= 0 {
		opts.ChartTimeout = defaults.ChartTimeout
	}
	if opts.NarrativeTimeout <= 0 {
		opts.NarrativeTimeout = defaults.NarrativeTimeout
	}
	return &Agent{
		engine:    engine,
		chart:     chart,
		generator: generator,
		risk:      riskManager,
		narrator:  narrator,
		opts:      opts,
		history:   newHistory(opts.HistoryCapacity),
		now:       time.Now,
		logger:    log.With().Str("component", "trading_agent").Logger(),
	}
}

type chartResult struct {
	ctx models.ChartContext
	err error
}

type narrativeResult struct {
	text string
	err  error
}

// Analyze runs the full pipeline. Invalid input and missing history fail
// before any state is touched. Collaborator failures degrade to warnings.
func (a *Agent) Analyze(ctx context.Context, req Request) (*models.Analysis, error) {
	start := a.now()

	if err := req.Series.Validate(); err != nil {
		return nil, err
	}
	params, err := a.risk.WithOverrides(req.Capital, req.RiskPercent)
	if err != nil {
		return nil, fmt.Errorf("risk parameters: %w", err)
	}
	if req.Symbol == "" {
		req.Symbol = DefaultSymbol
	}
	if req.Timeframe == "" {
		req.Timeframe = DefaultTimeframe
	}

	chartCtx, cancelChart := context.WithTimeout(ctx, a.opts.ChartTimeout)
	defer cancelChart()
	chartCh := a.startChart(chartCtx, req)

	report, err := a.engine.Analyze(req.Series)
	if err != nil {
		return nil, err
	}

	var warnings []string
	chart, chartOK, chartErr := a.awaitChart(chartCtx, chartCh)
	if chartErr != nil {
		a.logger.Warn().Err(chartErr).Str("symbol", req.Symbol).Msg("Chart analysis unavailable")
		warnings = append(warnings, "Chart analysis unavailable")
	}

	signal := a.generator.Generate(report, chart, report.CurrentPrice)
	validation := a.generator.Validate(signal)

	var assessment *models.RiskAssessment
	if validation.Passed && signal.SignalType.IsDirectional() {
		var riskWarnings []string
		assessment, riskWarnings = a.assessRisk(signal, report, chart, params)
		warnings = append(warnings, riskWarnings...)
	}

	analysis := &models.Analysis{
		ID:              uuid.NewString(),
		Timestamp:       start.UTC(),
		Symbol:          req.Symbol,
		Timeframe:       req.Timeframe,
		Signal:          signal,
		Validation:      validation,
		Risk:            assessment,
		Checklist:       buildChecklist(signal, report, assessment),
		Recommendations: buildRecommendations(signal, report, chart, assessment, validation),
		Technical:       report,
		Chart:           chart,
		Warnings:        append(append([]string{}, signal.Warnings...), warnings...),
		Metadata: models.AnalysisMetadata{
			Bars:          report.Bars,
			RiskParams:    models.RiskParams{Capital: params.Capital, RiskPercent: params.RiskPercent},
			ChartAnalyzed: chartOK,
		},
	}

	analysis.Narrative = a.narrate(ctx, models.NarrativeRequest{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Signal:    signal,
		Technical: report,
		Chart:     chart,
		Risk:      assessment,
	})

	analysis.Metadata.ProcessingTimeMs = a.now().Sub(start).Milliseconds()
	a.history.add(analysis.Record())

	a.logger.Info().
		Str("id", analysis.ID).
		Str("symbol", req.Symbol).
		Str("timeframe", req.Timeframe).
		Str("signal", string(signal.SignalType)).
		Float64("confidence", signal.Confidence).
		Bool("gate_passed", validation.Passed).
		Bool("all_ready", analysis.Checklist.AllReady).
		Int64("elapsed_ms", analysis.Metadata.ProcessingTimeMs).
		Msg("Analysis completed")

	return analysis, nil
}

// startChart runs the chart collaborator off the critical path. The channel
// is buffered so the goroutine never blocks after a timeout.
func (a *Agent) startChart(ctx context.Context, req Request) <-chan chartResult {
	ch := make(chan chartResult, 1)
	if a.chart == nil {
		ch <- chartResult{err: errNoCollaborator}
		return ch
	}
	go func() {
		c, err := a.chart.Analyze(ctx, req.Image, req.Series)
		ch <- chartResult{ctx: c, err: err}
	}()
	return ch
}

var errNoCollaborator = errors.New("not configured")

func (a *Agent) awaitChart(ctx context.Context, ch <-chan chartResult) (models.ChartContext, bool, error) {
	select {
	case r := <-ch:
		if errors.Is(r.err, errNoCollaborator) {
			return models.ChartContext{}, false, nil
		}
		if r.err != nil {
			return models.ChartContext{}, false, fmt.Errorf("%w: chart: %v", models.ErrCollaboratorUnavailable, r.err)
		}
		return r.ctx, true, nil
	case <-ctx.Done():
		return models.ChartContext{}, false, fmt.Errorf("%w: chart: %v", models.ErrCollaboratorUnavailable, ctx.Err())
	}
}

// assessRisk runs the risk cascade with the ATR and nearest levels. A level
// stop that lands on the wrong side of entry falls back to an ATR stop.
func (a *Agent) assessRisk(signal models.TradingSignal, report *models.TechnicalReport, chart models.ChartContext, params risk.Params) (*models.RiskAssessment, []string) {
	req := risk.AssessRequest{
		Entry:      signal.EntryPrice,
		Direction:  signal.SignalType,
		Support:    chart.SupportPrice(),
		Resistance: chart.ResistancePrice(),
		Params:     &params,
	}
	if report.ATR != nil {
		req.ATR = report.ATR.Value
		req.Method = risk.SelectStopLossMethod(req.Direction, req.Support, req.Resistance)
	} else {
		req.Method = models.StopLossPercentage
	}

	var warnings []string
	assessment, err := a.risk.Assess(req)
	if errors.Is(err, risk.ErrNonProtectiveStop) && req.Method == models.StopLossLevel {
		a.logger.Warn().Err(err).Msg("Level stop not protective, retrying with ATR")
		warnings = append(warnings, "Level-based stop not protective - using ATR stop")
		req.Method = models.StopLossATR
		assessment, err = a.risk.Assess(req)
	}
	if err != nil {
		a.logger.Warn().Err(err).Str("signal", string(signal.SignalType)).Msg("Risk assessment failed")
		return nil, append(warnings, fmt.Sprintf("Risk assessment unavailable: %v", err))
	}
	return assessment, warnings
}

// narrate asks the narrator for commentary, bounded by NarrativeTimeout.
func (a *Agent) narrate(ctx context.Context, req models.NarrativeRequest) string {
	if a.narrator == nil {
		return NarrativePlaceholder
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.NarrativeTimeout)
	defer cancel()

	ch := make(chan narrativeResult, 1)
	go func() {
		text, err := a.narrator.Narrate(ctx, req)
		ch <- narrativeResult{text: text, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil || r.text == "" {
			a.logger.Warn().Err(r.err).Str("symbol", req.Symbol).Msg("Narrative unavailable")
			return NarrativePlaceholder
		}
		return r.text
	case <-ctx.Done():
		a.logger.Warn().Err(ctx.Err()).Str("symbol", req.Symbol).Msg("Narrative timed out")
		return NarrativePlaceholder
	}
}

// TimeframeAnalysis is the result of a daily/4h/1h analysis.
type TimeframeAnalysis struct {
	Alignment models.Alignment            `json:"alignment"`
	Analyses  map[string]*models.Analysis `json:"analyses"`
}

// AnalyzeTimeframes analyses three timeframes of one symbol and reports
// whether their signals agree. Any failing timeframe fails the call.
func (a *Agent) AnalyzeTimeframes(ctx context.Context, symbol string, daily, h4, h1 models.PriceSeries) (*TimeframeAnalysis, error) {
	frames := []struct {
		name   string
		series models.PriceSeries
	}{
		{"daily", daily},
		{"4h", h4},
		{"1h", h1},
	}

	out := &TimeframeAnalysis{Analyses: make(map[string]*models.Analysis, len(frames))}
	for _, f := range frames {
		analysis, err := a.Analyze(ctx, Request{Symbol: symbol, Timeframe: f.name, Series: f.series})
		if err != nil {
			return nil, fmt.Errorf("%s timeframe: %w", f.name, err)
		}
		out.Analyses[f.name] = analysis
	}

	out.Alignment = signals.CheckAlignment(
		out.Analyses["daily"].Signal,
		out.Analyses["4h"].Signal,
		out.Analyses["1h"].Signal,
	)
	return out, nil
}

// Summary aggregates the retained history.
func (a *Agent) Summary() models.HistorySummary {
	return a.history.summary()
}

// Indicators describes the indicators computed for every analysis.
func (a *Agent) Indicators() map[string]string {
	return a.engine.Catalog()
}

// History returns the retained records oldest first.
func (a *Agent) History() []models.AnalysisRecord {
	return a.history.list()
}
