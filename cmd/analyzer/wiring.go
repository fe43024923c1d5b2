package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/internal/analyze"
	"github.com/Alias1177/tradeagent/internal/api/openai"
	"github.com/Alias1177/tradeagent/internal/chart"
	"github.com/Alias1177/tradeagent/internal/config"
	"github.com/Alias1177/tradeagent/internal/database"
	"github.com/Alias1177/tradeagent/internal/indicators"
	"github.com/Alias1177/tradeagent/internal/signals"
	"github.com/Alias1177/tradeagent/internal/trading/risk"
)

const riskAccount = "default"

type pipeline struct {
	agent *analyze.Agent
	risk  *risk.Manager
	redis *redis.Client
}

func (p *pipeline) Close() {
	if p.redis != nil {
		p.redis.Close()
	}
}

// buildPipeline wires the agent and its collaborators from configuration.
// Optional collaborators are skipped when their settings are empty.
func buildPipeline(ctx context.Context, cfg *config.Config) *pipeline {
	p := &pipeline{risk: risk.NewManager(cfg.Risk)}

	if cfg.RedisAddr != "" {
		p.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		p.risk.WithStore(database.NewRiskStateStore(ctx, p.redis, riskAccount))
		if err := p.risk.Load(ctx); err != nil {
			log.Warn().Err(err).Msg("Starting with fresh risk state")
		}
	}

	var narrator analyze.Narrator
	if cfg.OpenAIAPIKey != "" {
		narrator = openai.NewClient(openai.ClientOptions{
			APIKey:         cfg.OpenAIAPIKey,
			Model:          cfg.OpenAIModel,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
			RequestsPerSec: 5,
			MaxRetries:     3,
		})
	} else {
		log.Info().Msg("OPENAI_API_KEY not set, narratives disabled")
	}

	p.agent = analyze.NewAgent(
		indicators.NewEngine(indicators.DefaultOptions()),
		chart.NewAnalyzer(chart.DefaultLevelLookback),
		signals.NewGenerator(signals.DefaultOptions()),
		p.risk,
		narrator,
		cfg.AgentOptions(),
	)
	return p
}
