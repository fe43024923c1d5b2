package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/tradeagent/models"
)

type fakeBot struct {
	sent   []tgbotapi.MessageConfig
	failOn int64
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	if msg.ChatID == f.failOn {
		return tgbotapi.Message{}, errors.New("blocked by user")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func buyAnalysis() *models.Analysis {
	return &models.Analysis{
		ID:        "a1",
		Symbol:    "BTC/USD",
		Timeframe: "4h",
		Signal: models.TradingSignal{
			SignalType:   models.SignalTypeBuy,
			Confidence:   80,
			QualityScore: 65,
			Strength:     models.StrengthModerate,
			EntryPrice:   42000,
			Reasons:      []string{"Strong uptrend", "MACD bullish crossover"},
		},
		Validation: models.QualityValidation{Passed: true, Recommendation: models.RecommendationTrade},
		Risk: &models.RiskAssessment{
			StopLoss: models.StopLoss{Price: 41250, Method: models.StopLossATR},
			TakeProfits: models.TakeProfits{
				TP1: models.TakeProfit{Price: 42750, PositionPercentage: 50},
				TP2: models.TakeProfit{Price: 43500, PositionPercentage: 30},
				TP3: models.TakeProfit{Price: 44250, PositionPercentage: 20},
			},
			RiskReward:   models.RiskReward{Ratio: 1.7, Status: models.RiskRewardAcceptable},
			PositionSize: models.PositionSize{Units: 0.2667, RiskAmount: 200},
			Checks:       models.RiskChecks{AllPassed: true},
		},
	}
}

func TestFormatAnalysis(t *testing.T) {
	text := FormatAnalysis(buyAnalysis())
	for _, want := range []string{
		"🟢 BUY BTC/USD (4h)",
		"Confidence: 80.00% | Quality: 65.00 | Strength: MODERATE",
		"Entry: 42000.00000",
		"Stop: 41250.00000 (ATR)",
		"TP1: 42750.00000 (50%)",
		"TP3: 44250.00000 (20%)",
		"R:R 1.7:1 (ACCEPTABLE)",
		"Size: 0.2667 units, risk 200.00",
		"• MACD bullish crossover",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Risk limits exceeded") {
		t.Error("message flags risk limits that passed")
	}
}

func TestActionable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Analysis)
		want   bool
	}{
		{"passed buy", func(*models.Analysis) {}, true},
		{"hold", func(a *models.Analysis) { a.Signal.SignalType = models.SignalTypeHold }, false},
		{"rejected", func(a *models.Analysis) { a.Validation.Passed = false }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := buyAnalysis()
			tt.mutate(a)
			if got := Actionable(a); got != tt.want {
				t.Errorf("Actionable() = %v, want %v", got, tt.want)
			}
		})
	}
	if Actionable(nil) {
		t.Error("Actionable(nil) = true")
	}
}

func TestNotify(t *testing.T) {
	bot := &fakeBot{failOn: 2}
	n := newTelegram(bot, []int64{1, 2, 3})

	err := n.Notify(context.Background(), buyAnalysis())
	if err == nil {
		t.Error("Notify() should report the failed chat")
	}
	if len(bot.sent) != 2 || bot.sent[0].ChatID != 1 || bot.sent[1].ChatID != 3 {
		t.Errorf("sent = %+v", bot.sent)
	}

	hold := buyAnalysis()
	hold.Signal.SignalType = models.SignalTypeHold
	bot.sent = nil
	if err := n.Notify(context.Background(), hold); err != nil || len(bot.sent) != 0 {
		t.Errorf("HOLD notify = %v, sent %d", err, len(bot.sent))
	}
}
