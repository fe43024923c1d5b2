package models

// Signal is the directional vote of a single indicator.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// VolumeSignal classifies the latest bar's volume against its average.
type VolumeSignal string

const (
	VolumeConfirm VolumeSignal = "CONFIRM"
	VolumeCaution VolumeSignal = "CAUTION"
	VolumeNeutral VolumeSignal = "NEUTRAL"
)

// Indicator names used as report keys.
const (
	IndicatorRSI            = "rsi"
	IndicatorMACD           = "macd"
	IndicatorBollinger      = "bollinger_bands"
	IndicatorMovingAverages = "moving_averages"
	IndicatorATR            = "atr"
	IndicatorFibonacci      = "fibonacci"
	IndicatorADX            = "adx"
	IndicatorStochastic     = "stochastic"
	IndicatorVolume         = "volume"
)

// AllIndicators lists every indicator in evaluation order.
var AllIndicators = []string{
	IndicatorRSI,
	IndicatorMACD,
	IndicatorBollinger,
	IndicatorMovingAverages,
	IndicatorATR,
	IndicatorFibonacci,
	IndicatorADX,
	IndicatorStochastic,
	IndicatorVolume,
}

// Trend labels produced by the moving-average hierarchy.
const (
	TrendStrongUp   = "STRONG UPTREND"
	TrendStrongDown = "STRONG DOWNTREND"
	TrendUp         = "UPTREND"
	TrendDown       = "DOWNTREND"
	TrendSideways   = "SIDEWAYS"
)

// Volatility buckets derived from ATR as a percent of price.
const (
	VolatilityLow     = "LOW"
	VolatilityNormal  = "NORMAL"
	VolatilityHigh    = "HIGH"
	VolatilityExtreme = "EXTREME"
)

// ADX strength buckets and DI direction.
const (
	ADXWeak       = "WEAK"
	ADXModerate   = "MODERATE"
	ADXStrong     = "STRONG"
	ADXVeryStrong = "VERY STRONG"

	DirectionBullish = "BULLISH"
	DirectionBearish = "BEARISH"
)

// IndicatorResult is the uniform view of a single indicator.
type IndicatorResult struct {
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
	Signal         Signal  `json:"signal"`
}

type RSIResult struct {
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
	Signal         Signal  `json:"signal"`
}

type MACDResult struct {
	MACD           float64 `json:"macd"`
	SignalLine     float64 `json:"signal_line"`
	Histogram      float64 `json:"histogram"`
	Interpretation string  `json:"interpretation"`
	Signal         Signal  `json:"signal"`
}

type BollingerResult struct {
	Upper          float64 `json:"upper"`
	Middle         float64 `json:"middle"`
	Lower          float64 `json:"lower"`
	Bandwidth      float64 `json:"bandwidth"`
	Position       float64 `json:"position_percent"`
	Interpretation string  `json:"interpretation"`
	Signal         Signal  `json:"signal"`
}

// MovingAverageResult holds the EMA21/SMA50/SMA200 hierarchy. SMA200 is
// optional; HasSMA200 is false when the window is shorter than 200 bars.
type MovingAverageResult struct {
	EMA21     float64 `json:"ema_21"`
	SMA50     float64 `json:"sma_50"`
	SMA200    float64 `json:"sma_200,omitempty"`
	HasSMA200 bool    `json:"has_sma_200"`
	Trend     string  `json:"trend"`
	Crossover string  `json:"crossover,omitempty"`
	Signal    Signal  `json:"signal"`
}

type ATRResult struct {
	Value          float64 `json:"value"`
	Percent        float64 `json:"atr_percent"`
	Volatility     string  `json:"volatility"`
	Interpretation string  `json:"interpretation"`
}

// FibonacciResult holds retracement levels measured down from the window high.
type FibonacciResult struct {
	Levels       map[string]float64 `json:"levels"`
	NearestLevel string             `json:"nearest_level"`
	NearestPrice float64            `json:"nearest_price"`
	High         float64            `json:"high"`
	Low          float64            `json:"low"`
}

type ADXResult struct {
	Value          float64 `json:"value"`
	PlusDI         float64 `json:"plus_di"`
	MinusDI        float64 `json:"minus_di"`
	Strength       string  `json:"strength"`
	Direction      string  `json:"direction"`
	Interpretation string  `json:"interpretation"`
}

type StochasticResult struct {
	K              float64 `json:"k"`
	D              float64 `json:"d"`
	Interpretation string  `json:"interpretation"`
	Signal         Signal  `json:"signal"`
}

type VolumeResult struct {
	Current        float64      `json:"current"`
	Average        float64      `json:"average"`
	Ratio          float64      `json:"ratio"`
	Interpretation string       `json:"interpretation"`
	Signal         VolumeSignal `json:"signal"`
}

// TechnicalReport is the Indicator Engine's output. A nil field means the
// indicator could not be computed; the reason is kept in Unavailable.
type TechnicalReport struct {
	CurrentPrice   float64              `json:"current_price"`
	Bars           int                  `json:"bars"`
	RSI            *RSIResult           `json:"rsi,omitempty"`
	MACD           *MACDResult          `json:"macd,omitempty"`
	Bollinger      *BollingerResult     `json:"bollinger_bands,omitempty"`
	MovingAverages *MovingAverageResult `json:"moving_averages,omitempty"`
	ATR            *ATRResult           `json:"atr,omitempty"`
	Fibonacci      *FibonacciResult     `json:"fibonacci,omitempty"`
	ADX            *ADXResult           `json:"adx,omitempty"`
	Stochastic     *StochasticResult    `json:"stochastic,omitempty"`
	Volume         *VolumeResult        `json:"volume,omitempty"`
	Unavailable    map[string]string    `json:"unavailable,omitempty"`
}

// Results returns the uniform name -> result view of every available indicator.
func (r *TechnicalReport) Results() map[string]IndicatorResult {
	out := make(map[string]IndicatorResult)
	if r.RSI != nil {
		out[IndicatorRSI] = IndicatorResult{Value: r.RSI.Value, Interpretation: r.RSI.Interpretation, Signal: r.RSI.Signal}
	}
	if r.MACD != nil {
		out[IndicatorMACD] = IndicatorResult{Value: r.MACD.Histogram, Interpretation: r.MACD.Interpretation, Signal: r.MACD.Signal}
	}
	if r.Bollinger != nil {
		out[IndicatorBollinger] = IndicatorResult{Value: r.Bollinger.Position, Interpretation: r.Bollinger.Interpretation, Signal: r.Bollinger.Signal}
	}
	if r.MovingAverages != nil {
		out[IndicatorMovingAverages] = IndicatorResult{Value: r.MovingAverages.EMA21, Interpretation: r.MovingAverages.Trend, Signal: r.MovingAverages.Signal}
	}
	if r.ATR != nil {
		out[IndicatorATR] = IndicatorResult{Value: r.ATR.Value, Interpretation: r.ATR.Interpretation, Signal: SignalNeutral}
	}
	if r.Fibonacci != nil {
		out[IndicatorFibonacci] = IndicatorResult{Value: r.Fibonacci.NearestPrice, Interpretation: "Nearest level " + r.Fibonacci.NearestLevel + "%", Signal: SignalNeutral}
	}
	if r.ADX != nil {
		sig := SignalNeutral
		if r.ADX.Strength == ADXStrong || r.ADX.Strength == ADXVeryStrong {
			sig = SignalSell
			if r.ADX.Direction == DirectionBullish {
				sig = SignalBuy
			}
		}
		out[IndicatorADX] = IndicatorResult{Value: r.ADX.Value, Interpretation: r.ADX.Interpretation, Signal: sig}
	}
	if r.Stochastic != nil {
		out[IndicatorStochastic] = IndicatorResult{Value: r.Stochastic.K, Interpretation: r.Stochastic.Interpretation, Signal: r.Stochastic.Signal}
	}
	if r.Volume != nil {
		out[IndicatorVolume] = IndicatorResult{Value: r.Volume.Ratio, Interpretation: r.Volume.Interpretation, Signal: SignalNeutral}
	}
	return out
}
