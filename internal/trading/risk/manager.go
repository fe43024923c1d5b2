package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/tradeagent/internal/utils"
	"github.com/Alias1177/tradeagent/models"
)

var (
	ErrUnknownPosition   = errors.New("unknown position")
	ErrDuplicatePosition = errors.New("position already registered")
	// ErrRiskLimitExceeded is returned by OpenPosition when a portfolio gate
	// rejects the new position. The returned checks explain which one.
	ErrRiskLimitExceeded = errors.New("risk limit exceeded")
)

// Config holds the portfolio risk limits.
type Config struct {
	Capital             float64 `yaml:"capital"`
	MaxRiskPercent      float64 `yaml:"max_risk_percent"`
	MaxDailyLossPercent float64 `yaml:"max_daily_loss_percent"`
	MaxDrawdownPercent  float64 `yaml:"max_drawdown_percent"`
	MaxOpenPositions    int     `yaml:"max_open_positions"`
}

// DefaultConfig returns a 10k account risking 2% per trade.
func DefaultConfig() Config {
	return Config{
		Capital:             10000,
		MaxRiskPercent:      2,
		MaxDailyLossPercent: 5,
		MaxDrawdownPercent:  15,
		MaxOpenPositions:    5,
	}
}

// StateStore persists portfolio risk state between restarts.
type StateStore interface {
	SaveRiskState(ctx context.Context, state models.PortfolioRiskState) error
	LoadRiskState(ctx context.Context) (*models.PortfolioRiskState, error)
}

type position struct {
	id       string
	symbol   string
	risk     decimal.Decimal
	openedAt time.Time
}

// Manager owns the portfolio risk state. Every read-check-write sequence
// runs under mu, so concurrent callers never admit more risk than the limits
// allow.
type Manager struct {
	mu          sync.Mutex
	cfg         Config
	dailyLosses decimal.Decimal
	positions   []position

	persistMu sync.Mutex
	store     StateStore

	now    func() time.Time
	logger zerolog.Logger
}

// NewManager creates a risk manager with empty state.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:    cfg,
		now:    time.Now,
		logger: log.With().Str("component", "risk_manager").Logger(),
	}
}

// WithStore attaches a persistence backend. State is saved after each
// mutation; save failures are logged and do not fail the mutation.
func (m *Manager) WithStore(store StateStore) *Manager {
	m.store = store
	return m
}

// Config returns the current limits.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Params returns the base capital and per-trade risk.
func (m *Manager) Params() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Params{Capital: m.cfg.Capital, RiskPercent: m.cfg.MaxRiskPercent}
}

// WithOverrides derives per-call parameters. Shared state is not modified.
func (m *Manager) WithOverrides(capital, riskPercent *float64) (Params, error) {
	p := m.Params()
	if capital != nil {
		p.Capital = *capital
	}
	if riskPercent != nil {
		p.RiskPercent = *riskPercent
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// CheckDailyLossLimit reports whether an additional potential loss fits in
// today's loss budget.
func (m *Manager) CheckDailyLossLimit(potentialLoss float64) models.DailyLossCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkDailyLoss(m.cfg.Capital, potentialLoss)
}

// CheckPortfolioRisk reports whether a new position fits the open-position
// count and the drawdown budget.
func (m *Manager) CheckPortfolioRisk(newRisk float64) models.PortfolioCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkPortfolio(m.cfg.Capital, newRisk)
}

func (m *Manager) checkDailyLoss(capital, potentialLoss float64) models.DailyLossCheck {
	maxLoss := decimal.NewFromFloat(capital).Mul(decimal.NewFromFloat(m.cfg.MaxDailyLossPercent)).Div(decimal.NewFromInt(100))
	potential := decimal.NewFromFloat(potentialLoss)
	total := m.dailyLosses.Add(potential)

	return models.DailyLossCheck{
		Allowed:          total.LessThanOrEqual(maxLoss),
		DailyLosses:      utils.Round(m.dailyLosses.InexactFloat64(), 2),
		PotentialLoss:    utils.Round(potentialLoss, 2),
		TotalPotential:   utils.Round(total.InexactFloat64(), 2),
		MaxAllowed:       utils.Round(maxLoss.InexactFloat64(), 2),
		RemainingAllowed: utils.Round(maxLoss.Sub(total).InexactFloat64(), 2),
	}
}

func (m *Manager) checkPortfolio(capital, newRisk float64) models.PortfolioCheck {
	total := decimal.NewFromFloat(newRisk)
	for _, p := range m.positions {
		total = total.Add(p.risk)
	}
	percent := total.Div(decimal.NewFromFloat(capital)).Mul(decimal.NewFromInt(100)).InexactFloat64()

	check := models.PortfolioCheck{
		PositionCountOK:  len(m.positions) < m.cfg.MaxOpenPositions,
		OpenPositions:    len(m.positions),
		MaxPositions:     m.cfg.MaxOpenPositions,
		TotalRisk:        utils.Round(total.InexactFloat64(), 2),
		TotalRiskPercent: utils.Round(percent, 2),
		WithinLimits:     percent < m.cfg.MaxDrawdownPercent,
	}
	check.AllChecksPassed = check.PositionCountOK && check.WithinLimits
	return check
}

func (m *Manager) checks(capital, risk float64) models.RiskChecks {
	daily := m.checkDailyLoss(capital, risk)
	portfolio := m.checkPortfolio(capital, risk)
	return models.RiskChecks{
		DailyLoss: daily,
		Portfolio: portfolio,
		AllPassed: daily.Allowed && portfolio.AllChecksPassed,
	}
}

// AssessRequest describes the trade to assess. Method defaults to
// SelectStopLossMethod; Params defaults to the manager's base parameters.
type AssessRequest struct {
	Entry      float64
	Direction  models.SignalType
	ATR        float64
	Support    *float64
	Resistance *float64
	Method     models.StopLossMethod
	Params     *Params
}

// Assess runs the full risk cascade for a directional signal: stop-loss,
// take-profit ladder, risk/reward, position size and both portfolio gates.
// Assess never registers the position.
func (m *Manager) Assess(req AssessRequest) (*models.RiskAssessment, error) {
	params := m.Params()
	if req.Params != nil {
		params = *req.Params
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = SelectStopLossMethod(req.Direction, req.Support, req.Resistance)
	}

	sl, err := CalculateStopLoss(req.Entry, req.Direction, req.ATR, req.Support, req.Resistance, method)
	if err != nil {
		return nil, fmt.Errorf("stop-loss: %w", err)
	}
	tps := CalculateTakeProfits(req.Entry, sl, req.Direction, req.Support, req.Resistance)
	rr := CalculateRiskReward(sl, tps, params)
	size, err := CalculatePositionSize(req.Entry, sl, params)
	if err != nil {
		return nil, fmt.Errorf("position size: %w", err)
	}

	m.mu.Lock()
	checks := m.checks(params.Capital, rr.RiskAmount)
	m.mu.Unlock()

	m.logger.Debug().
		Str("direction", string(req.Direction)).
		Str("method", string(sl.Method)).
		Float64("stop", sl.Price).
		Float64("ratio", rr.Ratio).
		Bool("checks_passed", checks.AllPassed).
		Msg("Risk assessed")

	return &models.RiskAssessment{
		StopLoss:     sl,
		TakeProfits:  tps,
		RiskReward:   rr,
		PositionSize: size,
		Checks:       checks,
	}, nil
}

// OpenPosition checks both gates and registers the position in one critical
// section. When a gate fails nothing is registered and ErrRiskLimitExceeded
// is returned with the failing checks.
func (m *Manager) OpenPosition(ctx context.Context, id, symbol string, riskAmount float64) (models.RiskChecks, error) {
	if riskAmount <= 0 {
		return models.RiskChecks{}, fmt.Errorf("risk amount %v: %w", riskAmount, ErrInvalidParams)
	}

	m.mu.Lock()
	for _, p := range m.positions {
		if p.id == id {
			m.mu.Unlock()
			return models.RiskChecks{}, fmt.Errorf("%s: %w", id, ErrDuplicatePosition)
		}
	}
	checks := m.checks(m.cfg.Capital, riskAmount)
	if !checks.AllPassed {
		m.mu.Unlock()
		return checks, ErrRiskLimitExceeded
	}
	m.positions = append(m.positions, position{
		id:       id,
		symbol:   symbol,
		risk:     decimal.NewFromFloat(riskAmount),
		openedAt: m.now().UTC(),
	})
	count := len(m.positions)
	m.mu.Unlock()

	m.logger.Info().Str("position", id).Str("symbol", symbol).Float64("risk", riskAmount).Int("open", count).Msg("Position registered")
	m.persist(ctx)
	return checks, nil
}

// ClosePosition unregisters a position. A negative realized PnL is added to
// today's losses.
func (m *Manager) ClosePosition(ctx context.Context, id string, realizedPnL float64) error {
	m.mu.Lock()
	idx := -1
	for i, p := range m.positions {
		if p.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrUnknownPosition)
	}
	m.positions = append(m.positions[:idx], m.positions[idx+1:]...)
	if realizedPnL < 0 {
		m.dailyLosses = m.dailyLosses.Add(decimal.NewFromFloat(-realizedPnL))
	}
	m.mu.Unlock()

	m.logger.Info().Str("position", id).Float64("pnl", realizedPnL).Msg("Position closed")
	m.persist(ctx)
	return nil
}

// RecordLoss adds a realized loss to today's total. Non-positive amounts are
// ignored.
func (m *Manager) RecordLoss(ctx context.Context, amount float64) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	m.dailyLosses = m.dailyLosses.Add(decimal.NewFromFloat(amount))
	m.mu.Unlock()
	m.persist(ctx)
}

// ResetDailyLosses starts a new trading day.
func (m *Manager) ResetDailyLosses(ctx context.Context) {
	m.mu.Lock()
	m.dailyLosses = decimal.Zero
	m.mu.Unlock()

	m.logger.Info().Msg("Daily losses reset")
	m.persist(ctx)
}

// SetCapital updates the account capital.
func (m *Manager) SetCapital(ctx context.Context, capital float64) error {
	if capital <= 0 {
		return fmt.Errorf("capital %v: %w", capital, ErrInvalidParams)
	}
	m.mu.Lock()
	m.cfg.Capital = capital
	m.mu.Unlock()
	m.persist(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() models.PortfolioRiskState {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions := make([]models.OpenPosition, len(m.positions))
	for i, p := range m.positions {
		positions[i] = models.OpenPosition{
			ID:         p.id,
			Symbol:     p.symbol,
			RiskAmount: p.risk.InexactFloat64(),
			OpenedAt:   p.openedAt,
		}
	}
	return models.PortfolioRiskState{
		Capital:             m.cfg.Capital,
		MaxRiskPercent:      m.cfg.MaxRiskPercent,
		MaxDailyLossPercent: m.cfg.MaxDailyLossPercent,
		MaxDrawdownPercent:  m.cfg.MaxDrawdownPercent,
		MaxOpenPositions:    m.cfg.MaxOpenPositions,
		DailyLosses:         m.dailyLosses.InexactFloat64(),
		OpenPositions:       positions,
		UpdatedAt:           m.now().UTC(),
	}
}

// Restore replaces the state with a snapshot.
func (m *Manager) Restore(state models.PortfolioRiskState) error {
	if state.Capital <= 0 {
		return fmt.Errorf("restoring capital %v: %w", state.Capital, ErrInvalidParams)
	}

	positions := make([]position, len(state.OpenPositions))
	for i, p := range state.OpenPositions {
		positions[i] = position{
			id:       p.ID,
			symbol:   p.Symbol,
			risk:     decimal.NewFromFloat(p.RiskAmount),
			openedAt: p.OpenedAt,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = Config{
		Capital:             state.Capital,
		MaxRiskPercent:      state.MaxRiskPercent,
		MaxDailyLossPercent: state.MaxDailyLossPercent,
		MaxDrawdownPercent:  state.MaxDrawdownPercent,
		MaxOpenPositions:    state.MaxOpenPositions,
	}
	m.dailyLosses = decimal.NewFromFloat(state.DailyLosses)
	m.positions = positions
	return nil
}

// Load restores state from the attached store, if any. A missing snapshot is
// not an error.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	state, err := m.store.LoadRiskState(ctx)
	if err != nil {
		return fmt.Errorf("loading risk state: %w", err)
	}
	if state == nil {
		return nil
	}
	if err := m.Restore(*state); err != nil {
		return err
	}
	m.logger.Info().Int("positions", len(state.OpenPositions)).Float64("daily_losses", state.DailyLosses).Msg("Risk state restored")
	return nil
}

// persist saves a fresh snapshot. Saves are serialized so the last write
// always reflects the latest state.
func (m *Manager) persist(ctx context.Context) {
	if m.store == nil {
		return
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if err := m.store.SaveRiskState(ctx, m.Snapshot()); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to persist risk state")
	}
}
