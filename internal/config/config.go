package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/tradeagent/internal/analyze"
	"github.com/Alias1177/tradeagent/internal/database"
	"github.com/Alias1177/tradeagent/internal/trading/risk"
)

// Config holds all application configuration
type Config struct {
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`
	GinMode  string `yaml:"gin_mode"`

	Risk risk.Config `yaml:"risk"`

	HistoryCapacity    int `yaml:"history_capacity"`
	ChartTimeoutMs     int `yaml:"chart_timeout_ms"`
	NarrativeTimeoutMs int `yaml:"narrative_timeout_ms"`

	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	TwelveAPIKey   string `yaml:"twelve_api_key"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds

	DB DBConfig `yaml:"db"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	TelegramBotToken string  `yaml:"telegram_bot_token"`
	TelegramChatIDs  []int64 `yaml:"telegram_chat_ids"`
}

// DBConfig holds PostgreSQL settings. An empty Host disables the signal store.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	agent := analyze.DefaultOptions()
	return Config{
		LogLevel:           "info",
		HTTPAddr:           ":8080",
		GinMode:            "release",
		Risk:               risk.DefaultConfig(),
		HistoryCapacity:    agent.HistoryCapacity,
		ChartTimeoutMs:     int(agent.ChartTimeout / time.Millisecond),
		NarrativeTimeoutMs: int(agent.NarrativeTimeout / time.Millisecond),
		OpenAIModel:        "gpt-4o-mini",
		RequestTimeout:     30,
		DB:                 DBConfig{Port: "5432", SSLMode: "disable"},
	}
}

// Load initializes configuration. Values are layered: defaults, then the
// YAML file named by CONFIG_FILE, then environment variables (including
// those from a .env file).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GinMode = getEnvWithDefault("GIN_MODE", cfg.GinMode)

	cfg.Risk.Capital = getEnvFloatWithDefault("DEFAULT_CAPITAL", cfg.Risk.Capital)
	cfg.Risk.MaxRiskPercent = getEnvFloatWithDefault("MAX_RISK_PERCENT", cfg.Risk.MaxRiskPercent)
	cfg.Risk.MaxDailyLossPercent = getEnvFloatWithDefault("MAX_DAILY_LOSS_PERCENT", cfg.Risk.MaxDailyLossPercent)
	cfg.Risk.MaxDrawdownPercent = getEnvFloatWithDefault("MAX_DRAWDOWN_PERCENT", cfg.Risk.MaxDrawdownPercent)
	cfg.Risk.MaxOpenPositions = getEnvIntWithDefault("MAX_OPEN_POSITIONS", cfg.Risk.MaxOpenPositions)

	cfg.HistoryCapacity = getEnvIntWithDefault("HISTORY_CAPACITY", cfg.HistoryCapacity)
	cfg.ChartTimeoutMs = getEnvIntWithDefault("CHART_TIMEOUT_MS", cfg.ChartTimeoutMs)
	cfg.NarrativeTimeoutMs = getEnvIntWithDefault("NARRATIVE_TIMEOUT_MS", cfg.NarrativeTimeoutMs)

	cfg.OpenAIAPIKey = getEnvWithDefault("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.TwelveAPIKey = getEnvWithDefault("TWELVE_API_KEY", cfg.TwelveAPIKey)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)

	cfg.DB.Host = getEnvWithDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvWithDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnvWithDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnvWithDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnvWithDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnvWithDefault("DB_SSLMODE", cfg.DB.SSLMode)

	cfg.RedisAddr = getEnvWithDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnvWithDefault("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", cfg.RedisDB)

	cfg.TelegramBotToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	if value := os.Getenv("TELEGRAM_CHAT_ID"); value != "" {
		ids, err := parseChatIDs(value)
		if err != nil {
			return err
		}
		cfg.TelegramChatIDs = ids
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Risk.Capital <= 0 {
		return fmt.Errorf("capital must be positive, got %v", c.Risk.Capital)
	}
	if c.Risk.MaxRiskPercent <= 0 || c.Risk.MaxRiskPercent > 100 {
		return fmt.Errorf("max risk percent must be in (0, 100], got %v", c.Risk.MaxRiskPercent)
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return fmt.Errorf("max open positions must be positive, got %d", c.Risk.MaxOpenPositions)
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("history capacity must be positive, got %d", c.HistoryCapacity)
	}
	return nil
}

// AgentOptions returns the orchestrator settings.
func (c *Config) AgentOptions() analyze.Options {
	return analyze.Options{
		ChartTimeout:     time.Duration(c.ChartTimeoutMs) * time.Millisecond,
		NarrativeTimeout: time.Duration(c.NarrativeTimeoutMs) * time.Millisecond,
		HistoryCapacity:  c.HistoryCapacity,
	}
}

// DBParams returns the signal store connection parameters.
func (c *Config) DBParams() database.ConnectionParams {
	return database.ConnectionParams{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		DBName:   c.DB.Name,
		SSLMode:  c.DB.SSLMode,
	}
}

func parseChatIDs(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
