package indicators

import (
	"github.com/markcheno/go-talib"

	"github.com/Alias1177/tradeagent/models"
)

// AnalyzeVolume compares the latest volume with its simple moving average.
func AnalyzeVolume(volume []float64, period int) (*models.VolumeResult, error) {
	if err := requireBars(models.IndicatorVolume, period, len(volume)); err != nil {
		return nil, err
	}

	current := last(volume)
	average := last(talib.Sma(volume, period))

	res := &models.VolumeResult{
		Current: current,
		Average: average,
	}
	if average <= 0 {
		res.Interpretation = "No volume data"
		res.Signal = models.VolumeNeutral
		return res, nil
	}

	res.Ratio = current / average
	res.Interpretation, res.Signal = InterpretVolume(res.Ratio)
	return res, nil
}

// InterpretVolume classifies the volume ratio.
func InterpretVolume(ratio float64) (string, models.VolumeSignal) {
	switch {
	case ratio > 1.5:
		return "High volume - strong interest", models.VolumeConfirm
	case ratio < 0.5:
		return "Low volume - weak interest", models.VolumeCaution
	default:
		return "Normal volume", models.VolumeNeutral
	}
}
