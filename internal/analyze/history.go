package analyze

import (
	"sync"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

// DefaultHistoryCapacity bounds the retained analysis records.
const DefaultHistoryCapacity = 500

const summaryRecent = 5

// history is a fixed-capacity ring buffer of analysis records. The oldest
// record is overwritten once the buffer is full.
type history struct {
	mu      sync.Mutex
	records []models.AnalysisRecord
	next    int
	full    bool
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{records: make([]models.AnalysisRecord, capacity)}
}

func (h *history) add(r models.AnalysisRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = r
	h.next = (h.next + 1) % len(h.records)
	if h.next == 0 {
		h.full = true
	}
}

// list returns the retained records oldest first.
func (h *history) list() []models.AnalysisRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		out := make([]models.AnalysisRecord, h.next)
		copy(out, h.records[:h.next])
		return out
	}
	out := make([]models.AnalysisRecord, 0, len(h.records))
	out = append(out, h.records[h.next:]...)
	out = append(out, h.records[:h.next]...)
	return out
}

func (h *history) summary() models.HistorySummary {
	records := h.list()

	summary := models.HistorySummary{
		TotalAnalyses: len(records),
		SignalDistribution: map[models.SignalType]int{
			models.SignalTypeBuy:  0,
			models.SignalTypeSell: 0,
			models.SignalTypeHold: 0,
		},
		RecentSignals: []models.AnalysisRecord{},
	}
	if len(records) == 0 {
		return summary
	}

	confidences := make([]float64, len(records))
	for i, r := range records {
		summary.SignalDistribution[r.SignalType]++
		confidences[i] = r.Confidence
	}
	summary.AverageConfidence = utils.Round(utils.CalculateAverage(confidences), 2)

	from := len(records) - summaryRecent
	if from < 0 {
		from = 0
	}
	summary.RecentSignals = records[from:]
	return summary
}
