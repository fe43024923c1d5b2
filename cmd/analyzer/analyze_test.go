package main

import (
	"strings"
	"testing"
)

func TestReadSeries(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantClose float64
		wantErr   bool
	}{
		{
			name:      "candle array",
			input:     `[{"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},{"open":1.5,"high":2.5,"low":1,"close":2,"volume":12}]`,
			wantLen:   2,
			wantClose: 2,
		},
		{
			name:      "columns",
			input:     `{"open":[1,2,3],"high":[2,3,4],"low":[0.5,1,2],"close":[1.5,2.5,3.5],"volume":[1,1,1]}`,
			wantLen:   3,
			wantClose: 3.5,
		},
		{
			name:      "request body",
			input:     `{"symbol":"BTC/USD","ohlcv":{"open":[1],"high":[2],"low":[0.5],"close":[1.25],"volume":[0]}}`,
			wantLen:   1,
			wantClose: 1.25,
		},
		{name: "empty", input: "  ", wantErr: true},
		{name: "malformed", input: `{"close":[1,`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := readSeries(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readSeries() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if series.Len() != tt.wantLen || series.LastClose() != tt.wantClose {
				t.Errorf("series len %d last close %v", series.Len(), series.LastClose())
			}
		})
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"analyze", "serve"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	analyzeCmd, _, _ := root.Find([]string{"analyze"})
	for _, flag := range []string{"file", "symbol", "interval", "count", "image", "capital", "risk-percent"} {
		if analyzeCmd.Flags().Lookup(flag) == nil {
			t.Errorf("analyze is missing --%s", flag)
		}
	}
}
