package risk

import "github.com/Alias1177/tradeagent/models"

// DefaultTrailLock is the ATR multiple the stop trails price by.
const DefaultTrailLock = 0.5

// breakEvenBuffer keeps a trailed stop 0.1% on the profit side of entry.
const breakEvenBuffer = 0.001

// CalculateTrailingStop returns the new stop for an open position, or false
// when the position is not in profit. The stop never trails back past entry
// plus the break-even buffer.
func CalculateTrailingStop(entry, current float64, direction models.SignalType, atr, lock float64) (float64, bool) {
	switch direction {
	case models.SignalTypeBuy:
		if current <= entry {
			return 0, false
		}
		stop := current - atr*lock
		if stop < entry {
			stop = entry * (1 + breakEvenBuffer)
		}
		return stop, true

	case models.SignalTypeSell:
		if current >= entry {
			return 0, false
		}
		stop := current + atr*lock
		if stop > entry {
			stop = entry * (1 - breakEvenBuffer)
		}
		return stop, true
	}
	return 0, false
}
