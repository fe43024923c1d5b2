package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/Alias1177/tradeagent/models"
)

func float(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculateStopLossATRScenario(t *testing.T) {
	sl, err := CalculateStopLoss(42000, models.SignalTypeBuy, 500, nil, nil, models.StopLossATR)
	if err != nil {
		t.Fatalf("CalculateStopLoss() error = %v", err)
	}
	if sl.Price != 41250 || sl.Distance != 750 || sl.DistancePercent != 1.786 {
		t.Errorf("stop = %+v, want 41250 / 750 / 1.786", sl)
	}
	if sl.InvalidationLogic != "Price closes below 41250.00 (1.5x ATR)" {
		t.Errorf("InvalidationLogic = %q", sl.InvalidationLogic)
	}

	sl, err = CalculateStopLoss(42000, models.SignalTypeSell, 500, nil, nil, models.StopLossATR)
	if err != nil {
		t.Fatalf("CalculateStopLoss(SELL) error = %v", err)
	}
	if sl.Price != 42750 || sl.InvalidationLogic != "Price closes above 42750.00 (1.5x ATR)" {
		t.Errorf("SELL stop = %+v", sl)
	}
}

func TestCalculateStopLossMethods(t *testing.T) {
	tests := []struct {
		name       string
		direction  models.SignalType
		entry, atr float64
		support    *float64
		resistance *float64
		method     models.StopLossMethod
		wantPrice  float64
		wantLogic  string
	}{
		{"level buy", models.SignalTypeBuy, 100, 1, float(98), nil, models.StopLossLevel, 97.8, "Price breaks below support at 98.00"},
		{"level buy default level", models.SignalTypeBuy, 100, 1, nil, nil, models.StopLossLevel, 97.8, "Price breaks below support at 98.00"},
		{"level sell", models.SignalTypeSell, 100, 1, nil, float(103), models.StopLossLevel, 103.2, "Price breaks above resistance at 103.00"},
		{"percentage buy", models.SignalTypeBuy, 200, 0, nil, nil, models.StopLossPercentage, 195, "Price drops 2.5% from entry"},
		{"percentage sell", models.SignalTypeSell, 200, 0, nil, nil, models.StopLossPercentage, 205, "Price rises 2.5% from entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl, err := CalculateStopLoss(tt.entry, tt.direction, tt.atr, tt.support, tt.resistance, tt.method)
			if err != nil {
				t.Fatalf("CalculateStopLoss() error = %v", err)
			}
			if !approx(sl.Price, tt.wantPrice) || sl.InvalidationLogic != tt.wantLogic {
				t.Errorf("stop = %v %q, want %v %q", sl.Price, sl.InvalidationLogic, tt.wantPrice, tt.wantLogic)
			}
			if sl.Method != tt.method {
				t.Errorf("Method = %s, want %s", sl.Method, tt.method)
			}
		})
	}
}

func TestCalculateStopLossErrors(t *testing.T) {
	tests := []struct {
		name      string
		direction models.SignalType
		atr       float64
		support   *float64
		method    models.StopLossMethod
		want      error
	}{
		{"hold", models.SignalTypeHold, 1, nil, models.StopLossATR, ErrNotDirectional},
		{"zero atr", models.SignalTypeBuy, 0, nil, models.StopLossATR, ErrInvalidStopDistance},
		{"support above entry", models.SignalTypeBuy, 1, float(101), models.StopLossLevel, ErrNonProtectiveStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateStopLoss(100, tt.direction, tt.atr, tt.support, nil, tt.method)
			if !errors.Is(err, tt.want) {
				t.Errorf("CalculateStopLoss() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStopLossIsProtective(t *testing.T) {
	methods := []models.StopLossMethod{models.StopLossATR, models.StopLossLevel, models.StopLossPercentage}
	for _, method := range methods {
		for _, entry := range []float64{1.0845, 100, 42000} {
			atr := entry * 0.01
			buy, err := CalculateStopLoss(entry, models.SignalTypeBuy, atr, nil, nil, method)
			if err != nil {
				t.Fatalf("%s BUY error = %v", method, err)
			}
			sell, err := CalculateStopLoss(entry, models.SignalTypeSell, atr, nil, nil, method)
			if err != nil {
				t.Fatalf("%s SELL error = %v", method, err)
			}
			if buy.Price >= entry || buy.Distance <= 0 {
				t.Errorf("%s BUY stop %v not below entry %v", method, buy.Price, entry)
			}
			if sell.Price <= entry || sell.Distance <= 0 {
				t.Errorf("%s SELL stop %v not above entry %v", method, sell.Price, entry)
			}
		}
	}
}

func TestSelectStopLossMethod(t *testing.T) {
	if got := SelectStopLossMethod(models.SignalTypeBuy, float(98), nil); got != models.StopLossLevel {
		t.Errorf("BUY with support = %s, want LEVEL", got)
	}
	if got := SelectStopLossMethod(models.SignalTypeBuy, nil, float(105)); got != models.StopLossATR {
		t.Errorf("BUY with resistance only = %s, want ATR", got)
	}
	if got := SelectStopLossMethod(models.SignalTypeSell, nil, float(105)); got != models.StopLossLevel {
		t.Errorf("SELL with resistance = %s, want LEVEL", got)
	}
}

func TestCalculateTakeProfitsScenario(t *testing.T) {
	sl, _ := CalculateStopLoss(42000, models.SignalTypeBuy, 500, nil, nil, models.StopLossATR)
	tps := CalculateTakeProfits(42000, sl, models.SignalTypeBuy, nil, nil)

	want := []struct {
		price, ratio, pct float64
	}{
		{42750, 1, 50},
		{43500, 2, 30},
		{44250, 3, 20},
	}
	for i, leg := range tps.Legs() {
		if leg.Price != want[i].price || leg.Ratio != want[i].ratio || leg.PositionPercentage != want[i].pct {
			t.Errorf("TP%d = %+v, want %+v", i+1, leg, want[i])
		}
	}

	total := 0.0
	for _, leg := range tps.Legs() {
		total += leg.PositionPercentage
	}
	if total != 100 {
		t.Errorf("position percentages sum to %v, want 100", total)
	}
}

func TestCalculateTakeProfitsSnapping(t *testing.T) {
	sl := models.StopLoss{Distance: 1}
	tests := []struct {
		name       string
		direction  models.SignalType
		support    *float64
		resistance *float64
		wantTP3    float64
		wantRatio  float64
	}{
		{"buy snaps to resistance", models.SignalTypeBuy, nil, float(103.5), 103.5, 3.5},
		{"buy ignores resistance before tp2", models.SignalTypeBuy, nil, float(101.5), 103, 3},
		{"buy ignores distant resistance", models.SignalTypeBuy, nil, float(150), 103, 3},
		{"sell snaps to support", models.SignalTypeSell, float(97.5), nil, 97.5, 2.5},
		{"sell without support", models.SignalTypeSell, nil, nil, 97, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tps := CalculateTakeProfits(100, sl, tt.direction, tt.support, tt.resistance)
			if tps.TP3.Price != tt.wantTP3 || tps.TP3.Ratio != tt.wantRatio {
				t.Errorf("TP3 = %v ratio %v, want %v ratio %v", tps.TP3.Price, tps.TP3.Ratio, tt.wantTP3, tt.wantRatio)
			}
			if tps.TP1.Ratio != 1 || tps.TP2.Ratio != 2 {
				t.Errorf("TP1/TP2 ratios = %v/%v, want 1/2", tps.TP1.Ratio, tps.TP2.Ratio)
			}
			for i, leg := range tps.Legs() {
				if tt.direction == models.SignalTypeBuy && leg.Price <= 100 {
					t.Errorf("BUY TP%d %v not above entry", i+1, leg.Price)
				}
				if tt.direction == models.SignalTypeSell && leg.Price >= 100 {
					t.Errorf("SELL TP%d %v not below entry", i+1, leg.Price)
				}
			}
		})
	}
}

func TestCalculateRiskRewardAndPositionSize(t *testing.T) {
	params := Params{Capital: 10000, RiskPercent: 2}
	sl, _ := CalculateStopLoss(42000, models.SignalTypeBuy, 500, nil, nil, models.StopLossATR)
	tps := CalculateTakeProfits(42000, sl, models.SignalTypeBuy, nil, nil)

	rr := CalculateRiskReward(sl, tps, params)
	if rr.Ratio != 1.7 || rr.Status != models.RiskRewardAcceptable {
		t.Errorf("risk/reward = %+v, want 1.7 ACCEPTABLE", rr)
	}
	if rr.RiskAmount != 200 || rr.ProfitTarget != 340 {
		t.Errorf("risk amount / target = %v / %v, want 200 / 340", rr.RiskAmount, rr.ProfitTarget)
	}

	size, err := CalculatePositionSize(42000, sl, params)
	if err != nil {
		t.Fatalf("CalculatePositionSize() error = %v", err)
	}
	if !approx(size.Units, 200.0/750) || !approx(size.LotSize, 200.0/750/100000) {
		t.Errorf("units / lots = %v / %v", size.Units, size.LotSize)
	}
	if size.PositionValue != 11200 || size.LeverageRequired != 1.12 || size.RiskAmount != 200 {
		t.Errorf("position = %+v", size)
	}
	if size.Units <= 0 || size.LotSize <= 0 {
		t.Errorf("small positions must stay positive: %+v", size)
	}

	if _, err := CalculatePositionSize(100, models.StopLoss{}, params); !errors.Is(err, ErrInvalidStopDistance) {
		t.Errorf("zero stop distance error = %v", err)
	}
}

func TestRiskRewardStatus(t *testing.T) {
	tests := []struct {
		ratio float64
		want  models.RiskRewardStatus
	}{
		{2.5, models.RiskRewardExcellent},
		{2.0, models.RiskRewardGood},
		{1.5, models.RiskRewardAcceptable},
		{1.49, models.RiskRewardReject},
	}
	for _, tt := range tests {
		if got := riskRewardStatus(tt.ratio); got != tt.want {
			t.Errorf("riskRewardStatus(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestCalculateTrailingStop(t *testing.T) {
	tests := []struct {
		name           string
		entry, current float64
		direction      models.SignalType
		atr            float64
		want           float64
		ok             bool
	}{
		{"buy trailing", 100, 105, models.SignalTypeBuy, 2, 104, true},
		{"buy break-even floor", 100, 100.5, models.SignalTypeBuy, 2, 100.1, true},
		{"buy not in profit", 100, 99, models.SignalTypeBuy, 2, 0, false},
		{"sell trailing", 100, 95, models.SignalTypeSell, 2, 96, true},
		{"sell break-even floor", 100, 99.5, models.SignalTypeSell, 2, 99.9, true},
		{"sell not in profit", 100, 100, models.SignalTypeSell, 2, 0, false},
		{"hold", 100, 105, models.SignalTypeHold, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateTrailingStop(tt.entry, tt.current, tt.direction, tt.atr, DefaultTrailLock)
			if ok != tt.ok || !approx(got, tt.want) {
				t.Errorf("CalculateTrailingStop() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
