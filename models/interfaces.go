package models

import "context"

// CandleSource fetches chronological candles for a symbol and interval.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, count int) ([]Candle, error)
}
