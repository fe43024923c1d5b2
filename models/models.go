package models

import (
	"fmt"
	"math"
)

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime,omitempty"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// PriceSeries is a chronologically ordered OHLCV window, oldest bar first.
// All five columns have the same length. The analysis pipeline only reads it.
type PriceSeries struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// NewPriceSeries builds a column-oriented series from candles.
func NewPriceSeries(candles []Candle) PriceSeries {
	s := PriceSeries{
		Open:   make([]float64, len(candles)),
		High:   make([]float64, len(candles)),
		Low:    make([]float64, len(candles)),
		Close:  make([]float64, len(candles)),
		Volume: make([]float64, len(candles)),
	}
	for i, c := range candles {
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		s.Volume[i] = c.Volume
	}
	return s
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.Close)
}

// LastClose returns the most recent close, zero for an empty series.
func (s PriceSeries) LastClose() float64 {
	if len(s.Close) == 0 {
		return 0
	}
	return s.Close[len(s.Close)-1]
}

// Tail returns a view of the last n bars. The underlying arrays are shared.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= s.Len() || n < 0 {
		return s
	}
	from := s.Len() - n
	return PriceSeries{
		Open:   s.Open[from:],
		High:   s.High[from:],
		Low:    s.Low[from:],
		Close:  s.Close[from:],
		Volume: s.Volume[from:],
	}
}

// Candle returns bar i as a Candle.
func (s PriceSeries) Candle(i int) Candle {
	return Candle{
		Open:   s.Open[i],
		High:   s.High[i],
		Low:    s.Low[i],
		Close:  s.Close[i],
		Volume: s.Volume[i],
	}
}

// Validate checks the structural preconditions every consumer relies on.
func (s PriceSeries) Validate() error {
	n := len(s.Close)
	if n == 0 {
		return &InvalidSeriesError{Reason: "series is empty"}
	}
	columns := map[string][]float64{
		"open":   s.Open,
		"high":   s.High,
		"low":    s.Low,
		"close":  s.Close,
		"volume": s.Volume,
	}
	for _, name := range []string{"open", "high", "low", "close", "volume"} {
		col := columns[name]
		if len(col) != n {
			return &InvalidSeriesError{
				Reason: fmt.Sprintf("column %s has %d values, close has %d", name, len(col), n),
			}
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InvalidSeriesError{Reason: fmt.Sprintf("non-finite %s at bar %d", name, i)}
			}
			if v < 0 {
				return &InvalidSeriesError{Reason: fmt.Sprintf("negative %s at bar %d", name, i)}
			}
		}
	}
	for i, c := range s.Close {
		if c <= 0 {
			return &InvalidSeriesError{Reason: fmt.Sprintf("non-positive close at bar %d", i)}
		}
	}
	return nil
}
