package database

import (
	"context"
	"testing"
	"time"

	"github.com/Alias1177/tradeagent/internal/trading/risk"
	"github.com/Alias1177/tradeagent/models"
)

func TestSignalFromAnalysis(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := models.Analysis{
		ID:        "a1",
		Timestamp: ts,
		Symbol:    "BTC/USD",
		Timeframe: "4h",
		Signal: models.TradingSignal{
			SignalType:      models.SignalTypeBuy,
			Confidence:      80,
			QualityScore:    65,
			ConfluenceCount: 3,
			EntryPrice:      42000,
		},
	}

	t.Run("without risk", func(t *testing.T) {
		s := signalFromAnalysis(&base)
		if s.ID != "a1" || s.SignalType != models.SignalTypeBuy || s.ConfluenceCount != 3 || s.EntryPrice != 42000 {
			t.Errorf("row = %+v", s)
		}
		if s.StopLoss != nil || s.TakeProfit1 != nil || s.PositionSize != nil {
			t.Errorf("risk columns should be NULL, got %+v", s)
		}
	})

	t.Run("with risk", func(t *testing.T) {
		a := base
		a.Risk = &models.RiskAssessment{
			StopLoss: models.StopLoss{Price: 41250},
			TakeProfits: models.TakeProfits{
				TP1: models.TakeProfit{Price: 43125},
				TP2: models.TakeProfit{Price: 43500},
				TP3: models.TakeProfit{Price: 44250},
			},
			RiskReward:   models.RiskReward{Ratio: 1.7},
			PositionSize: models.PositionSize{Units: 0.2667},
		}
		s := signalFromAnalysis(&a)
		checks := []struct {
			name string
			got  *float64
			want float64
		}{
			{"stop", s.StopLoss, 41250},
			{"tp1", s.TakeProfit1, 43125},
			{"tp2", s.TakeProfit2, 43500},
			{"tp3", s.TakeProfit3, 44250},
			{"rr", s.RiskReward, 1.7},
			{"size", s.PositionSize, 0.2667},
		}
		for _, c := range checks {
			if c.got == nil || *c.got != c.want {
				t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
			}
		}
	})
}

func TestRiskStateKey(t *testing.T) {
	s := NewRiskStateStore(context.Background(), nil, "main")
	if got := s.Key(); got != "tradeagent:risk:main" {
		t.Errorf("Key() = %q", got)
	}
	if s.Available() {
		t.Error("memory-only store reports Redis available")
	}
}

func TestRiskStateStoreMemoryMode(t *testing.T) {
	ctx := context.Background()
	store := NewRiskStateStore(ctx, nil, "main")

	state, err := store.LoadRiskState(ctx)
	if err != nil || state != nil {
		t.Fatalf("LoadRiskState() on empty store = %v, %v", state, err)
	}

	m := risk.NewManager(risk.DefaultConfig()).WithStore(store)
	if _, err := m.OpenPosition(ctx, "p1", "BTC/USD", 100); err != nil {
		t.Fatalf("OpenPosition() error = %v", err)
	}
	m.RecordLoss(ctx, 50)

	restored := risk.NewManager(risk.Config{Capital: 1}).WithStore(store)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := restored.Snapshot()
	if snap.Capital != 10000 || snap.DailyLosses != 50 || len(snap.OpenPositions) != 1 || snap.OpenPositions[0].ID != "p1" {
		t.Errorf("restored state = %+v", snap)
	}
}

func TestRiskStateStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewRiskStateStore(ctx, nil, "main")
	store.SaveRiskState(ctx, models.PortfolioRiskState{
		Capital:       1000,
		OpenPositions: []models.OpenPosition{{ID: "p1"}},
	})

	first, _ := store.LoadRiskState(ctx)
	first.OpenPositions[0].ID = "changed"
	second, _ := store.LoadRiskState(ctx)
	if second.OpenPositions[0].ID != "p1" {
		t.Errorf("cached state was mutated through a loaded copy")
	}
}

func TestDecodeRiskState(t *testing.T) {
	if _, err := decodeRiskState([]byte("{")); err == nil {
		t.Error("decodeRiskState() accepted malformed JSON")
	}
	state, err := decodeRiskState([]byte(`{"capital":2500,"daily_losses":10,"open_positions":[]}`))
	if err != nil {
		t.Fatalf("decodeRiskState() error = %v", err)
	}
	if state.Capital != 2500 || state.DailyLosses != 10 {
		t.Errorf("state = %+v", state)
	}
}
