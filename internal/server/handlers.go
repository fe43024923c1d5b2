package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Alias1177/tradeagent/internal/analyze"
	"github.com/Alias1177/tradeagent/internal/indicators"
	"github.com/Alias1177/tradeagent/internal/trading/risk"
	"github.com/Alias1177/tradeagent/models"
)

const defaultSignalLimit = 50

type analysisRequest struct {
	Symbol      string             `json:"symbol"`
	Timeframe   string             `json:"timeframe"`
	OHLCV       models.PriceSeries `json:"ohlcv"`
	ImageBase64 string             `json:"image_base64"`
	Capital     *float64           `json:"capital"`
	RiskPercent *float64           `json:"risk_percent"`
}

type timeframesRequest struct {
	Symbol string             `json:"symbol"`
	Daily  models.PriceSeries `json:"daily"`
	H4     models.PriceSeries `json:"h4"`
	H1     models.PriceSeries `json:"h1"`
}

type openPositionRequest struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	RiskAmount float64 `json:"risk_amount"`
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":       message,
		"status_code": status,
		"timestamp":   time.Now().UTC(),
	})
}

// analysisStatus maps pipeline errors to HTTP status codes. Bad input is the
// caller's fault; anything else is ours.
func analysisStatus(err error) int {
	var insufficient *models.InsufficientHistoryError
	var invalid *models.InvalidSeriesError
	switch {
	case errors.As(err, &insufficient), errors.As(err, &invalid), errors.Is(err, risk.ErrInvalidParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Trading Agent API",
		"version": Version,
		"stream":  "/ws/signals",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"version":    Version,
		"timestamp":  time.Now().UTC(),
		"ws_clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.OHLCV.Close) == 0 {
		errorResponse(c, http.StatusBadRequest, "OHLCV data is required")
		return
	}
	if len(req.OHLCV.Close) < indicators.MinimumBars {
		errorResponse(c, http.StatusBadRequest,
			fmt.Sprintf("Insufficient data. Minimum %d candles required for accurate analysis", indicators.MinimumBars))
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid image_base64: "+err.Error())
			return
		}
		image = decoded
	}

	analysis, err := s.agent.Analyze(c.Request.Context(), analyze.Request{
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Series:      req.OHLCV,
		Image:       image,
		Capital:     req.Capital,
		RiskPercent: req.RiskPercent,
	})
	if err != nil {
		status := analysisStatus(err)
		s.logger.Warn().Err(err).Int("status", status).Str("symbol", req.Symbol).Msg("Analysis failed")
		errorResponse(c, status, "Analysis failed: "+err.Error())
		return
	}

	s.publish(analysis)
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleAnalyzeTimeframes(c *gin.Context) {
	var req timeframesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := s.agent.AnalyzeTimeframes(c.Request.Context(), req.Symbol, req.Daily, req.H4, req.H1)
	if err != nil {
		errorResponse(c, analysisStatus(err), "Analysis failed: "+err.Error())
		return
	}
	for _, a := range result.Analyses {
		s.publish(a)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.agent.Summary())
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"records": s.agent.History()})
}

func (s *Server) handleSignals(c *gin.Context) {
	if s.store == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Signal store not configured")
		return
	}
	limit := defaultSignalLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	signals, err := s.store.RecentSignals(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load signals")
		errorResponse(c, http.StatusInternalServerError, "Failed to load signals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

func (s *Server) handleMarkExecuted(c *gin.Context) {
	if s.store == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Signal store not configured")
		return
	}
	id := c.Param("id")
	if err := s.store.MarkExecuted(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "executed": true})
}

func (s *Server) handleIndicators(c *gin.Context) {
	configured := s.agent.Indicators()
	out := make(map[string]indicatorInfo, len(indicatorCatalogue))
	for name, info := range indicatorCatalogue {
		info.Configuration = configured[name]
		out[name] = info
	}
	c.JSON(http.StatusOK, gin.H{
		"total_indicators": len(out),
		"indicators":       out,
	})
}

func (s *Server) handleRiskState(c *gin.Context) {
	c.JSON(http.StatusOK, s.risk.Snapshot())
}

func (s *Server) handleOpenPosition(c *gin.Context) {
	var req openPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	checks, err := s.risk.OpenPosition(c.Request.Context(), req.ID, req.Symbol, req.RiskAmount)
	switch {
	case errors.Is(err, risk.ErrRiskLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "risk_checks": checks})
		return
	case errors.Is(err, risk.ErrDuplicatePosition):
		errorResponse(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, risk.ErrInvalidParams):
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "risk_checks": checks})
}

func (s *Server) handleClosePosition(c *gin.Context) {
	var pnl float64
	if v := c.Query("realized_pnl"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid realized_pnl")
			return
		}
		pnl = parsed
	}

	if err := s.risk.ClosePosition(c.Request.Context(), c.Param("id"), pnl); err != nil {
		if errors.Is(err, risk.ErrUnknownPosition) {
			errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.risk.Snapshot())
}

func (s *Server) handleDailyReset(c *gin.Context) {
	s.risk.ResetDailyLosses(c.Request.Context())
	c.JSON(http.StatusOK, s.risk.Snapshot())
}

type indicatorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Range       string `json:"range,omitempty"`
	Signals     string `json:"signals,omitempty"`
	Usage       string `json:"usage,omitempty"`

	Configuration string `json:"configuration,omitempty"`
}

var indicatorCatalogue = map[string]indicatorInfo{
	models.IndicatorRSI: {
		Name:        "Relative Strength Index",
		Description: "Momentum oscillator measuring overbought/oversold conditions",
		Range:       "0-100",
		Signals:     "Overbought >70, Oversold <30",
	},
	models.IndicatorMACD: {
		Name:        "Moving Average Convergence Divergence",
		Description: "Trend-following momentum indicator",
		Signals:     "Crossovers, divergences",
	},
	models.IndicatorBollinger: {
		Name:        "Bollinger Bands",
		Description: "Volatility indicator with upper/lower bands",
		Signals:     "Band touches, squeezes",
	},
	models.IndicatorMovingAverages: {
		Name:        "Moving Averages (EMA21, SMA50, SMA200)",
		Description: "Trend identification and support/resistance",
		Signals:     "Crossovers, price position",
	},
	models.IndicatorATR: {
		Name:        "Average True Range",
		Description: "Volatility measurement",
		Usage:       "Stop loss placement, position sizing",
	},
	models.IndicatorADX: {
		Name:        "Average Directional Index",
		Description: "Trend strength indicator",
		Range:       "0-100",
		Signals:     ">25 strong trend, <20 weak trend",
	},
	models.IndicatorStochastic: {
		Name:        "Stochastic Oscillator",
		Description: "Momentum indicator for range-bound markets",
		Range:       "0-100",
		Signals:     "Overbought >80, Oversold <20",
	},
	models.IndicatorFibonacci: {
		Name:        "Fibonacci Retracement",
		Description: "Support/resistance levels based on Fibonacci ratios",
		Usage:       "23.6%, 38.2%, 50%, 61.8%, 78.6%",
	},
	models.IndicatorVolume: {
		Name:        "Volume Analysis",
		Description: "Confirmation of price movements",
		Signals:     "Above/below average confirmation",
	},
}
