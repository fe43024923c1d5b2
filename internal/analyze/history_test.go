package analyze

import (
	"fmt"
	"testing"

	"github.com/Alias1177/tradeagent/models"
)

func TestHistoryRingBuffer(t *testing.T) {
	h := newHistory(3)
	for i := 1; i <= 5; i++ {
		h.add(models.AnalysisRecord{ID: fmt.Sprintf("a%d", i)})
	}

	got := h.list()
	want := []string{"a3", "a4", "a5"}
	if len(got) != len(want) {
		t.Fatalf("list() = %+v", got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("list()[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestHistorySummary(t *testing.T) {
	h := newHistory(0)

	empty := h.summary()
	if empty.TotalAnalyses != 0 || len(empty.RecentSignals) != 0 || empty.SignalDistribution[models.SignalTypeBuy] != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	records := []struct {
		signal     models.SignalType
		confidence float64
	}{
		{models.SignalTypeBuy, 80},
		{models.SignalTypeBuy, 70},
		{models.SignalTypeSell, 60},
		{models.SignalTypeHold, 40},
		{models.SignalTypeBuy, 90},
		{models.SignalTypeSell, 55},
	}
	for i, r := range records {
		h.add(models.AnalysisRecord{ID: fmt.Sprintf("a%d", i), SignalType: r.signal, Confidence: r.confidence})
	}

	s := h.summary()
	if s.TotalAnalyses != 6 {
		t.Errorf("TotalAnalyses = %d", s.TotalAnalyses)
	}
	wantDist := map[models.SignalType]int{models.SignalTypeBuy: 3, models.SignalTypeSell: 2, models.SignalTypeHold: 1}
	for k, v := range wantDist {
		if s.SignalDistribution[k] != v {
			t.Errorf("distribution[%s] = %d, want %d", k, s.SignalDistribution[k], v)
		}
	}
	if s.AverageConfidence != 65.83 {
		t.Errorf("AverageConfidence = %v, want 65.83", s.AverageConfidence)
	}
	if len(s.RecentSignals) != 5 || s.RecentSignals[0].ID != "a1" || s.RecentSignals[4].ID != "a5" {
		t.Errorf("RecentSignals = %+v", s.RecentSignals)
	}
}
