package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/tradeagent/models"
)

const (
	// RiskStateKeyPrefix is the key prefix; the full key is tradeagent:risk:{account}.
	RiskStateKeyPrefix = "tradeagent:risk"

	// RiskStateTTL keeps state for a week without writes.
	RiskStateTTL = 7 * 24 * time.Hour
)

// RiskStateStore keeps portfolio risk state in Redis. When Redis is nil or
// unreachable it serves from an in-memory copy so trading decisions never
// block on the cache.
type RiskStateStore struct {
	client         *redis.Client
	account        string
	cached         *models.PortfolioRiskState
	mu             sync.RWMutex
	redisAvailable atomic.Bool
	logger         zerolog.Logger
}

// NewRiskStateStore creates a store for one account. A nil client gives a
// memory-only store.
func NewRiskStateStore(ctx context.Context, client *redis.Client, account string) *RiskStateStore {
	s := &RiskStateStore{
		client:  client,
		account: account,
		logger:  log.With().Str("component", "risk_state_store").Logger(),
	}

	if client == nil {
		s.logger.Info().Msg("No Redis client, risk state kept in memory")
		return s
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Redis unavailable at startup, using in-memory state")
		return s
	}
	s.redisAvailable.Store(true)
	return s
}

// Key returns the Redis key holding this account's state.
func (s *RiskStateStore) Key() string {
	return riskStateKey(s.account)
}

func riskStateKey(account string) string {
	return fmt.Sprintf("%s:%s", RiskStateKeyPrefix, account)
}

// SaveRiskState writes the state through to Redis. Redis failures switch the
// store to memory mode and are not returned.
func (s *RiskStateStore) SaveRiskState(ctx context.Context, state models.PortfolioRiskState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal risk state: %w", err)
	}

	s.mu.Lock()
	s.cached = &state
	s.mu.Unlock()

	if s.client == nil || !s.redisAvailable.Load() {
		return nil
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.Key(), data, RiskStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save risk state to Redis, using in-memory state")
		s.redisAvailable.Store(false)
		return nil
	}
	s.logger.Debug().Int("open_positions", len(state.OpenPositions)).Msg("Saved risk state")
	return nil
}

// LoadRiskState returns the stored state, or nil when nothing was saved.
func (s *RiskStateStore) LoadRiskState(ctx context.Context) (*models.PortfolioRiskState, error) {
	if s.client != nil && s.redisAvailable.Load() {
		data, err := s.client.Get(ctx, s.Key()).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			return s.fromCache(), nil
		case err != nil:
			s.logger.Warn().Err(err).Msg("Redis read error, using in-memory state")
			s.redisAvailable.Store(false)
			return s.fromCache(), nil
		}

		state, err := decodeRiskState(data)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = state
		s.mu.Unlock()
		return state, nil
	}
	return s.fromCache(), nil
}

// Available reports whether writes currently reach Redis.
func (s *RiskStateStore) Available() bool {
	return s.client != nil && s.redisAvailable.Load()
}

func (s *RiskStateStore) fromCache() *models.PortfolioRiskState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return nil
	}
	state := *s.cached
	state.OpenPositions = append([]models.OpenPosition(nil), s.cached.OpenPositions...)
	return &state
}

func decodeRiskState(data []byte) (*models.PortfolioRiskState, error) {
	var state models.PortfolioRiskState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal risk state: %w", err)
	}
	return &state, nil
}
