package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DEFAULT_CAPITAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Risk.Capital != 10000 || cfg.Risk.MaxRiskPercent != 2 || cfg.Risk.MaxOpenPositions != 5 {
		t.Errorf("risk defaults = %+v", cfg.Risk)
	}
	opts := cfg.AgentOptions()
	if opts.ChartTimeout != 5*time.Second || opts.NarrativeTimeout != 15*time.Second || opts.HistoryCapacity != 500 {
		t.Errorf("AgentOptions() = %+v", opts)
	}
}

func TestLoadLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
http_addr: ":9090"
risk:
  capital: 25000
  max_risk_percent: 1
  max_daily_loss_percent: 4
  max_drawdown_percent: 10
  max_open_positions: 3
db:
  host: db.internal
  name: signals
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_OPEN_POSITIONS", "7")
	t.Setenv("CHART_TIMEOUT_MS", "250")
	t.Setenv("TELEGRAM_CHAT_ID", "100, -200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.Risk.Capital != 25000 || cfg.Risk.MaxRiskPercent != 1 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Risk.MaxOpenPositions != 7 {
		t.Errorf("env should override file, MaxOpenPositions = %d", cfg.Risk.MaxOpenPositions)
	}
	if cfg.AgentOptions().ChartTimeout != 250*time.Millisecond {
		t.Errorf("ChartTimeout = %v", cfg.AgentOptions().ChartTimeout)
	}
	if !reflect.DeepEqual(cfg.TelegramChatIDs, []int64{100, -200}) {
		t.Errorf("TelegramChatIDs = %v", cfg.TelegramChatIDs)
	}
	if p := cfg.DBParams(); p.Host != "db.internal" || p.DBName != "signals" || p.Port != "5432" || p.SSLMode != "disable" {
		t.Errorf("DBParams() = %+v", p)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad chat id", map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/config.yaml"}},
		{"zero capital", map[string]string{"DEFAULT_CAPITAL": "0"}},
		{"risk percent too high", map[string]string{"MAX_RISK_PERCENT": "150"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "notanumber")
	t.Setenv("TEST_FLOAT", "2.5")
	if got := getEnvIntWithDefault("TEST_INT", 3); got != 3 {
		t.Errorf("getEnvIntWithDefault() = %d, want fallback 3", got)
	}
	if got := getEnvFloatWithDefault("TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("getEnvFloatWithDefault() = %v", got)
	}
	if got := getEnvWithDefault("TEST_UNSET_KEY", "x"); got != "x" {
		t.Errorf("getEnvWithDefault() = %q", got)
	}
}
