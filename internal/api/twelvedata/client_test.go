package twelvedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpClient "github.com/Alias1177/tradeagent/internal/platform/http"
)

const seriesBody = `{
  "meta": {"symbol": "EUR/USD", "interval": "1h"},
  "values": [
    {"datetime": "2024-01-01 02:00:00", "open": "1.1020", "high": "1.1040", "low": "1.1010", "close": "1.1030"},
    {"datetime": "2024-01-01 00:00:00", "open": "1.1000", "high": "1.1015", "low": "1.0990", "close": "1.1010"},
    {"datetime": "2024-01-01 01:00:00", "open": "1.1010", "high": "1.1025", "low": "1.1005", "close": "1.1020"}
  ],
  "status": "ok"
}`

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		APIKey:          "test-key",
		BaseURL:         url,
		RequestTimeout:  time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
	})
}

func TestGetSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time_series" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "EUR/USD" || q.Get("interval") != "1h" || q.Get("outputsize") != "3" || q.Get("apikey") != "test-key" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	series, err := newTestClient(srv.URL).GetSeries(context.Background(), "EUR/USD", "1h", 3)
	if err != nil {
		t.Fatalf("GetSeries() error = %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", series.Len())
	}
	want := []float64{1.1010, 1.1020, 1.1030}
	for i, c := range want {
		if series.Close[i] != c {
			t.Errorf("Close[%d] = %v, want %v", i, series.Close[i], c)
		}
	}
	if series.Volume[0] != 0 {
		t.Errorf("missing volume should decode as zero, got %v", series.Volume[0])
	}
}

func TestGetCandlesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{"api error", http.StatusOK, `{"code":400,"message":"bad symbol","status":"error"}`, func(err error) bool { return err != nil }},
		{"empty values", http.StatusOK, `{"values":[],"status":"ok"}`, func(err error) bool { return err != nil }},
		{"bad request not retried", http.StatusBadRequest, `{}`, func(err error) bool {
			var statusErr *httpClient.HTTPStatusError
			return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).GetCandles(context.Background(), "XXX", "1h", 10)
			if !tt.wantErr(err) {
				t.Errorf("GetCandles() error = %v", err)
			}
			if calls != 1 {
				t.Errorf("server called %d times, want 1", calls)
			}
		})
	}
}
