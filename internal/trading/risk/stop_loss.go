package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

var (
	// ErrNonProtectiveStop is returned when a computed stop sits on the
	// profit side of entry.
	ErrNonProtectiveStop = errors.New("stop-loss is not on the protective side of entry")
	// ErrInvalidStopDistance is returned for a zero stop distance or missing ATR.
	ErrInvalidStopDistance = errors.New("stop-loss distance must be positive")
	// ErrNotDirectional is returned when risk is requested for a HOLD.
	ErrNotDirectional = errors.New("risk requires a BUY or SELL direction")
)

const (
	atrStopMultiplier    = 1.5
	levelBufferATR       = 0.2
	defaultLevelATR      = 2.0
	percentageStopFactor = 0.025
)

// SelectStopLossMethod prefers a level-based stop when the level that would
// protect the trade is known, otherwise ATR.
func SelectStopLossMethod(direction models.SignalType, support, resistance *float64) models.StopLossMethod {
	if direction == models.SignalTypeBuy && support != nil {
		return models.StopLossLevel
	}
	if direction == models.SignalTypeSell && resistance != nil {
		return models.StopLossLevel
	}
	return models.StopLossATR
}

// CalculateStopLoss places the protective stop for an entry. The result is
// always strictly on the loss side of entry with a positive distance.
func CalculateStopLoss(entry float64, direction models.SignalType, atr float64, support, resistance *float64, method models.StopLossMethod) (models.StopLoss, error) {
	if !direction.IsDirectional() {
		return models.StopLoss{}, ErrNotDirectional
	}
	if entry <= 0 {
		return models.StopLoss{}, fmt.Errorf("entry price %v: %w", entry, ErrInvalidStopDistance)
	}
	if method != models.StopLossPercentage && atr <= 0 {
		return models.StopLoss{}, fmt.Errorf("atr %v with %s stop: %w", atr, method, ErrInvalidStopDistance)
	}

	buy := direction == models.SignalTypeBuy
	var price float64
	var invalidation string

	switch method {
	case models.StopLossATR:
		if buy {
			price = entry - atr*atrStopMultiplier
			invalidation = fmt.Sprintf("Price closes below %.2f (1.5x ATR)", price)
		} else {
			price = entry + atr*atrStopMultiplier
			invalidation = fmt.Sprintf("Price closes above %.2f (1.5x ATR)", price)
		}

	case models.StopLossLevel:
		if buy {
			level := entry - atr*defaultLevelATR
			if support != nil {
				level = *support
			}
			price = level - atr*levelBufferATR
			invalidation = fmt.Sprintf("Price breaks below support at %.2f", level)
		} else {
			level := entry + atr*defaultLevelATR
			if resistance != nil {
				level = *resistance
			}
			price = level + atr*levelBufferATR
			invalidation = fmt.Sprintf("Price breaks above resistance at %.2f", level)
		}

	case models.StopLossPercentage:
		if buy {
			price = entry * (1 - percentageStopFactor)
			invalidation = "Price drops 2.5% from entry"
		} else {
			price = entry * (1 + percentageStopFactor)
			invalidation = "Price rises 2.5% from entry"
		}

	default:
		return models.StopLoss{}, fmt.Errorf("unknown stop-loss method %q", method)
	}

	if (buy && price >= entry) || (!buy && price <= entry) {
		return models.StopLoss{}, fmt.Errorf("%s stop at %.5f for %s entry %.5f: %w", method, price, direction, entry, ErrNonProtectiveStop)
	}

	distance := math.Abs(entry - price)
	if distance <= 0 {
		return models.StopLoss{}, ErrInvalidStopDistance
	}

	return models.StopLoss{
		Price:             price,
		Distance:          distance,
		DistancePercent:   utils.Round(distance/entry*100, 3),
		Method:            method,
		InvalidationLogic: invalidation,
	}, nil
}
