package models

import "time"

// ExecutionChecklist is the pre-trade readiness checklist. AllReady is the
// conjunction of the other six flags.
type ExecutionChecklist struct {
	PriceActionConfirmed bool `json:"price_action_confirmed"`
	MomentumAligned      bool `json:"momentum_aligned"`
	VolatilityAcceptable bool `json:"volatility_acceptable"`
	TrendStrengthOK      bool `json:"trend_strength_ok"`
	RiskRewardPositive   bool `json:"risk_reward_positive"`
	RiskLimitsOK         bool `json:"risk_limits_ok"`
	AllReady             bool `json:"all_ready"`
}

// AnalysisRecord is the compact history entry kept by the agent.
type AnalysisRecord struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Symbol     string     `json:"symbol"`
	Timeframe  string     `json:"timeframe"`
	SignalType SignalType `json:"signal_type"`
	Confidence float64    `json:"confidence"`
}

// HistorySummary aggregates the retained analysis history.
type HistorySummary struct {
	TotalAnalyses      int                `json:"total_analyses"`
	SignalDistribution map[SignalType]int `json:"signal_distribution"`
	AverageConfidence  float64            `json:"average_confidence"`
	RecentSignals      []AnalysisRecord   `json:"recent_signals"`
}

// RiskParams are the capital and per-trade risk actually used for a call.
type RiskParams struct {
	Capital     float64 `json:"capital"`
	RiskPercent float64 `json:"risk_percent"`
}

type AnalysisMetadata struct {
	Bars             int        `json:"bars"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	RiskParams       RiskParams `json:"risk_params"`
	ChartAnalyzed    bool       `json:"chart_analyzed"`
}

// Analysis is the orchestrator's composite result.
type Analysis struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Symbol          string             `json:"symbol"`
	Timeframe       string             `json:"timeframe"`
	Signal          TradingSignal      `json:"signal"`
	Validation      QualityValidation  `json:"validation"`
	Risk            *RiskAssessment    `json:"risk,omitempty"`
	Checklist       ExecutionChecklist `json:"execution_checklist"`
	Recommendations []string           `json:"recommendations"`
	Narrative       string             `json:"narrative"`
	Technical       *TechnicalReport   `json:"technical_details"`
	Chart           ChartContext       `json:"chart_context"`
	Warnings        []string           `json:"warnings,omitempty"`
	Metadata        AnalysisMetadata   `json:"metadata"`
}

// Record returns the history entry for this analysis.
func (a *Analysis) Record() AnalysisRecord {
	return AnalysisRecord{
		ID:         a.ID,
		Timestamp:  a.Timestamp,
		Symbol:     a.Symbol,
		Timeframe:  a.Timeframe,
		SignalType: a.Signal.SignalType,
		Confidence: a.Signal.Confidence,
	}
}

// NarrativeRequest carries everything a narrative generator may describe.
type NarrativeRequest struct {
	Symbol    string
	Timeframe string
	Signal    TradingSignal
	Technical *TechnicalReport
	Chart     ChartContext
	Risk      *RiskAssessment
}
