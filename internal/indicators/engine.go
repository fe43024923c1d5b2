package indicators

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/models"
)

// MinimumBars is the shortest series for which every default indicator can
// be computed.
const MinimumBars = 50

// Options holds indicator periods and the set of indicators whose absence
// fails the whole analysis.
type Options struct {
	RSIPeriod          int
	MACDFastPeriod     int
	MACDSlowPeriod     int
	MACDSignalPeriod   int
	BollingerPeriod    int
	BollingerDeviation float64
	EMAPeriod          int
	SMAPeriod          int
	LongSMAPeriod      int
	ATRPeriod          int
	ADXPeriod          int
	StochKPeriod       int
	StochSlowKPeriod   int
	StochDPeriod       int
	VolumePeriod       int
	FibonacciLookback  int

	// Mandatory lists indicator names that must be computable. Any other
	// indicator short of history is reported as unavailable instead.
	Mandatory []string
}

// DefaultOptions returns the standard periods with every indicator mandatory.
func DefaultOptions() Options {
	return Options{
		RSIPeriod:          14,
		MACDFastPeriod:     12,
		MACDSlowPeriod:     26,
		MACDSignalPeriod:   9,
		BollingerPeriod:    20,
		BollingerDeviation: 2.0,
		EMAPeriod:          21,
		SMAPeriod:          50,
		LongSMAPeriod:      200,
		ATRPeriod:          14,
		ADXPeriod:          14,
		StochKPeriod:       14,
		StochSlowKPeriod:   3,
		StochDPeriod:       3,
		VolumePeriod:       20,
		FibonacciLookback:  100,
		Mandatory:          append([]string(nil), models.AllIndicators...),
	}
}

// Engine computes the composite technical report. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	opts      Options
	mandatory map[string]bool
	logger    zerolog.Logger
}

type calculator struct {
	name string
	run  func(models.PriceSeries, *models.TechnicalReport) error
}

// NewEngine creates an indicator engine.
func NewEngine(opts Options) *Engine {
	mandatory := make(map[string]bool, len(opts.Mandatory))
	for _, name := range opts.Mandatory {
		mandatory[name] = true
	}
	return &Engine{
		opts:      opts,
		mandatory: mandatory,
		logger:    log.With().Str("component", "indicator_engine").Logger(),
	}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Analyze runs every indicator over the series. The series is validated
// first; a mandatory indicator without enough history fails the call with
// *models.InsufficientHistoryError.
func (e *Engine) Analyze(series models.PriceSeries) (*models.TechnicalReport, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	report := &models.TechnicalReport{
		CurrentPrice: series.LastClose(),
		Bars:         series.Len(),
		Unavailable:  make(map[string]string),
	}

	for _, calc := range e.calculators() {
		if err := calc.run(series, report); err != nil {
			var short *models.InsufficientHistoryError
			if errors.As(err, &short) && !e.mandatory[calc.name] {
				report.Unavailable[calc.name] = err.Error()
				e.logger.Debug().Str("indicator", calc.name).Int("bars", series.Len()).Msg("Indicator unavailable")
				continue
			}
			return nil, fmt.Errorf("computing %s: %w", calc.name, err)
		}
	}

	e.logger.Debug().
		Int("bars", report.Bars).
		Int("unavailable", len(report.Unavailable)).
		Msg("Technical report computed")

	return report, nil
}

func (e *Engine) calculators() []calculator {
	o := e.opts
	return []calculator{
		{models.IndicatorRSI, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.RSI, err = CalculateRSI(s.Close, o.RSIPeriod)
			return err
		}},
		{models.IndicatorMACD, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.MACD, err = CalculateMACD(s.Close, o.MACDFastPeriod, o.MACDSlowPeriod, o.MACDSignalPeriod)
			return err
		}},
		{models.IndicatorBollinger, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.Bollinger, err = CalculateBollingerBands(s.Close, o.BollingerPeriod, o.BollingerDeviation)
			return err
		}},
		{models.IndicatorMovingAverages, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.MovingAverages, err = CalculateMovingAverages(s.Close, o.EMAPeriod, o.SMAPeriod, o.LongSMAPeriod)
			return err
		}},
		{models.IndicatorATR, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.ATR, err = CalculateATR(s.High, s.Low, s.Close, o.ATRPeriod)
			return err
		}},
		{models.IndicatorFibonacci, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.Fibonacci, err = CalculateFibonacci(s.Close, o.FibonacciLookback)
			return err
		}},
		{models.IndicatorADX, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.ADX, err = CalculateADX(s.High, s.Low, s.Close, o.ADXPeriod)
			return err
		}},
		{models.IndicatorStochastic, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.Stochastic, err = CalculateStochastic(s.High, s.Low, s.Close, o.StochKPeriod, o.StochSlowKPeriod, o.StochDPeriod)
			return err
		}},
		{models.IndicatorVolume, func(s models.PriceSeries, r *models.TechnicalReport) (err error) {
			r.Volume, err = AnalyzeVolume(s.Volume, o.VolumePeriod)
			return err
		}},
	}
}

// Catalog describes the indicators the engine computes.
func (e *Engine) Catalog() map[string]string {
	o := e.opts
	return map[string]string{
		models.IndicatorRSI:            fmt.Sprintf("Relative Strength Index (%d)", o.RSIPeriod),
		models.IndicatorMACD:           fmt.Sprintf("MACD (%d, %d, %d)", o.MACDFastPeriod, o.MACDSlowPeriod, o.MACDSignalPeriod),
		models.IndicatorBollinger:      fmt.Sprintf("Bollinger Bands (%d, %.1f)", o.BollingerPeriod, o.BollingerDeviation),
		models.IndicatorMovingAverages: fmt.Sprintf("EMA%d, SMA%d, SMA%d", o.EMAPeriod, o.SMAPeriod, o.LongSMAPeriod),
		models.IndicatorATR:            fmt.Sprintf("Average True Range (%d)", o.ATRPeriod),
		models.IndicatorFibonacci:      fmt.Sprintf("Fibonacci retracements over %d bars", o.FibonacciLookback),
		models.IndicatorADX:            fmt.Sprintf("Average Directional Index (%d)", o.ADXPeriod),
		models.IndicatorStochastic:     fmt.Sprintf("Stochastic Oscillator (%d, %d, %d)", o.StochKPeriod, o.StochSlowKPeriod, o.StochDPeriod),
		models.IndicatorVolume:         fmt.Sprintf("Volume vs SMA%d", o.VolumePeriod),
	}
}

func requireBars(indicator string, required, got int) error {
	if got < required {
		return &models.InsufficientHistoryError{Indicator: indicator, Required: required, Got: got}
	}
	return nil
}

func last(values []float64) float64 {
	return values[len(values)-1]
}

func previous(values []float64) float64 {
	return values[len(values)-2]
}
