package models

import (
	"errors"
	"fmt"
)

// ErrCollaboratorUnavailable marks a failed or timed-out chart analyzer or
// narrative generator. The pipeline degrades instead of failing.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// InsufficientHistoryError is returned when a series is shorter than an
// indicator's lookback.
type InsufficientHistoryError struct {
	Indicator string
	Required  int
	Got       int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s: need %d bars, got %d", e.Indicator, e.Required, e.Got)
}

// InvalidSeriesError is returned for empty, misaligned or non-finite input.
type InvalidSeriesError struct {
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	return "invalid price series: " + e.Reason
}
