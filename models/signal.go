package models

// SignalType is the final trading decision.
type SignalType string

const (
	SignalTypeBuy  SignalType = "BUY"
	SignalTypeSell SignalType = "SELL"
	SignalTypeHold SignalType = "HOLD"
)

// IsDirectional reports whether the decision opens a position.
func (s SignalType) IsDirectional() bool {
	return s == SignalTypeBuy || s == SignalTypeSell
}

// Strength buckets the quality score.
type Strength string

const (
	StrengthWeak     Strength = "WEAK"
	StrengthModerate Strength = "MODERATE"
	StrengthStrong   Strength = "STRONG"
)

// EntryTrigger describes how eagerly the signal should be entered.
type EntryTrigger string

const (
	TriggerImmediate        EntryTrigger = "IMMEDIATE"
	TriggerWaitConfirmation EntryTrigger = "WAIT_CONFIRMATION"
	TriggerPullback         EntryTrigger = "PULLBACK"
)

// TradingSignal is the Confluence Signal Generator's decision.
// ConfluenceCount always equals len(Reasons).
type TradingSignal struct {
	SignalType       SignalType   `json:"signal_type"`
	Confidence       float64      `json:"confidence"`
	Strength         Strength     `json:"strength"`
	QualityScore     float64      `json:"quality_score"`
	ConfluenceCount  int          `json:"confluence_count"`
	EntryPrice       float64      `json:"entry_price"`
	EntryDescription string       `json:"entry_description"`
	EntryTrigger     EntryTrigger `json:"entry_trigger"`
	Reasons          []string     `json:"reasons"`
	Warnings         []string     `json:"warnings"`
	PatternCount     int          `json:"pattern_count"`
}

// QualityValidation is the outcome of the quality gate. A failed gate is a
// regular result with itemised issues, never an error.
type QualityValidation struct {
	Passed         bool     `json:"passed"`
	Issues         []string `json:"issues"`
	Recommendation string   `json:"recommendation"`
}

const (
	RecommendationTrade = "TRADE"
	RecommendationSkip  = "SKIP"
)

// Alignment labels for multi-timeframe agreement.
const (
	AlignmentBullish = "BULLISH"
	AlignmentBearish = "BEARISH"
	AlignmentMixed   = "MIXED"
)

// Alignment summarises agreement across daily, 4h and 1h signals.
type Alignment struct {
	Aligned           bool                  `json:"aligned"`
	Alignment         string                `json:"alignment"`
	AverageConfidence float64               `json:"average_confidence"`
	Recommendation    string                `json:"recommendation"`
	Timeframes        map[string]SignalType `json:"timeframes,omitempty"`
}
