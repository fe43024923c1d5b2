package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/tradeagent/internal/analyze"
	"github.com/Alias1177/tradeagent/internal/api/twelvedata"
	"github.com/Alias1177/tradeagent/internal/config"
	"github.com/Alias1177/tradeagent/models"
)

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		file        string
		symbol      string
		interval    string
		count       int
		imagePath   string
		capital     float64
		riskPercent float64
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze OHLCV data from a file or from Twelve Data",
		Example: `  analyzer analyze --file ohlcv.json --symbol BTC/USD --interval 4h
  analyzer analyze --symbol EUR/USD --interval 1h --count 200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var series models.PriceSeries
			var err error
			switch {
			case file != "":
				series, err = loadSeriesFile(file)
			case symbol != "":
				series, err = fetchSeries(cmd, cfg, symbol, interval, count)
			default:
				return errors.New("either --file or --symbol is required")
			}
			if err != nil {
				return err
			}

			req := analyze.Request{Symbol: symbol, Timeframe: interval, Series: series}
			if imagePath != "" {
				if req.Image, err = os.ReadFile(imagePath); err != nil {
					return fmt.Errorf("reading chart image: %w", err)
				}
			}
			if cmd.Flags().Changed("capital") {
				req.Capital = &capital
			}
			if cmd.Flags().Changed("risk-percent") {
				req.RiskPercent = &riskPercent
			}

			p := buildPipeline(ctx, cfg)
			defer p.Close()

			analysis, err := p.agent.Analyze(ctx, req)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			log.Info().
				Str("signal", string(analysis.Signal.SignalType)).
				Float64("confidence", analysis.Signal.Confidence).
				Bool("passed", analysis.Validation.Passed).
				Int64("ms", analysis.Metadata.ProcessingTimeMs).
				Msg("Analysis complete")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with OHLCV columns or a candle array")
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Trading symbol, e.g. EUR/USD")
	cmd.Flags().StringVarP(&interval, "interval", "i", "1h", "Candle interval / timeframe")
	cmd.Flags().IntVar(&count, "count", 200, "Number of candles to fetch")
	cmd.Flags().StringVar(&imagePath, "image", "", "Optional chart image")
	cmd.Flags().Float64Var(&capital, "capital", 0, "Capital override for this analysis")
	cmd.Flags().Float64Var(&riskPercent, "risk-percent", 0, "Risk percent override for this analysis")
	return cmd
}

func fetchSeries(cmd *cobra.Command, cfg *config.Config, symbol, interval string, count int) (models.PriceSeries, error) {
	if cfg.TwelveAPIKey == "" {
		return models.PriceSeries{}, errors.New("TWELVE_API_KEY is required to fetch candles")
	}
	var source models.CandleSource = twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: 5,
		MaxRetries:     3,
	})
	candles, err := source.GetCandles(cmd.Context(), symbol, interval, count)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("fetching candles: %w", err)
	}
	return models.NewPriceSeries(candles), nil
}

func loadSeriesFile(path string) (models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readSeries(f)
}

// readSeries accepts a candle array, a column object, or a request body with
// the columns under "ohlcv".
func readSeries(r io.Reader) (models.PriceSeries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("reading series: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return models.PriceSeries{}, errors.New("series file is empty")
	}

	if data[0] == '[' {
		var candles []models.Candle
		if err := json.Unmarshal(data, &candles); err != nil {
			return models.PriceSeries{}, fmt.Errorf("parsing candles: %w", err)
		}
		return models.NewPriceSeries(candles), nil
	}

	var wrapper struct {
		OHLCV *models.PriceSeries `json:"ohlcv"`
		models.PriceSeries
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return models.PriceSeries{}, fmt.Errorf("parsing series: %w", err)
	}
	if wrapper.OHLCV != nil {
		return *wrapper.OHLCV, nil
	}
	return wrapper.PriceSeries, nil
}
