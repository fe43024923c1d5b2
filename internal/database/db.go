package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/tradeagent/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New opens the signal database and creates missing tables.
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trade_signals (
			id                TEXT PRIMARY KEY,
			timestamp         TIMESTAMPTZ NOT NULL,
			symbol            TEXT NOT NULL,
			timeframe         TEXT NOT NULL,
			signal_type       TEXT NOT NULL,
			confidence        DOUBLE PRECISION NOT NULL,
			quality_score     DOUBLE PRECISION NOT NULL,
			confluence_count  INTEGER NOT NULL,
			entry_price       DOUBLE PRECISION NOT NULL,
			stop_loss_price   DOUBLE PRECISION,
			take_profit_1     DOUBLE PRECISION,
			take_profit_2     DOUBLE PRECISION,
			take_profit_3     DOUBLE PRECISION,
			risk_reward_ratio DOUBLE PRECISION,
			position_size     DOUBLE PRECISION,
			technical_data    JSONB,
			executed          BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("creating trade_signals: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS trade_signals_symbol_ts ON trade_signals (symbol, timestamp DESC)
	`)
	if err != nil {
		return fmt.Errorf("creating trade_signals index: %w", err)
	}
	return nil
}

// StoredSignal is one row of trade_signals.
type StoredSignal struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	Symbol          string            `json:"symbol"`
	Timeframe       string            `json:"timeframe"`
	SignalType      models.SignalType `json:"signal_type"`
	Confidence      float64           `json:"confidence"`
	QualityScore    float64           `json:"quality_score"`
	ConfluenceCount int               `json:"confluence_count"`
	EntryPrice      float64           `json:"entry_price"`
	StopLoss        *float64          `json:"stop_loss,omitempty"`
	TakeProfit1     *float64          `json:"take_profit_1,omitempty"`
	TakeProfit2     *float64          `json:"take_profit_2,omitempty"`
	TakeProfit3     *float64          `json:"take_profit_3,omitempty"`
	RiskReward      *float64          `json:"risk_reward_ratio,omitempty"`
	PositionSize    *float64          `json:"position_size,omitempty"`
	Executed        bool              `json:"executed"`
}

// signalFromAnalysis flattens an analysis into a trade_signals row. Risk
// columns stay NULL when the analysis carries no risk assessment.
func signalFromAnalysis(a *models.Analysis) StoredSignal {
	s := StoredSignal{
		ID:              a.ID,
		Timestamp:       a.Timestamp,
		Symbol:          a.Symbol,
		Timeframe:       a.Timeframe,
		SignalType:      a.Signal.SignalType,
		Confidence:      a.Signal.Confidence,
		QualityScore:    a.Signal.QualityScore,
		ConfluenceCount: a.Signal.ConfluenceCount,
		EntryPrice:      a.Signal.EntryPrice,
	}
	if r := a.Risk; r != nil {
		s.StopLoss = &r.StopLoss.Price
		s.TakeProfit1 = &r.TakeProfits.TP1.Price
		s.TakeProfit2 = &r.TakeProfits.TP2.Price
		s.TakeProfit3 = &r.TakeProfits.TP3.Price
		s.RiskReward = &r.RiskReward.Ratio
		s.PositionSize = &r.PositionSize.Units
	}
	return s
}

// SaveAnalysis stores the signal of an analysis with its technical report.
func (db *DB) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	s := signalFromAnalysis(a)
	technical, err := json.Marshal(a.Technical)
	if err != nil {
		return fmt.Errorf("encoding technical data: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO trade_signals (
			id, timestamp, symbol, timeframe, signal_type, confidence, quality_score,
			confluence_count, entry_price, stop_loss_price, take_profit_1, take_profit_2,
			take_profit_3, risk_reward_ratio, position_size, technical_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`,
		s.ID, s.Timestamp, s.Symbol, s.Timeframe, string(s.SignalType), s.Confidence, s.QualityScore,
		s.ConfluenceCount, s.EntryPrice, s.StopLoss, s.TakeProfit1, s.TakeProfit2,
		s.TakeProfit3, s.RiskReward, s.PositionSize, technical)
	if err != nil {
		return fmt.Errorf("inserting signal %s: %w", s.ID, err)
	}
	return nil
}

// RecentSignals returns the newest signals for a symbol, or for every symbol
// when symbol is empty.
func (db *DB) RecentSignals(ctx context.Context, symbol string, limit int) ([]StoredSignal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, timestamp, symbol, timeframe, signal_type, confidence, quality_score,
			confluence_count, entry_price, stop_loss_price, take_profit_1, take_profit_2,
			take_profit_3, risk_reward_ratio, position_size, executed
		FROM trade_signals
		WHERE $1 = '' OR symbol = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("querying signals: %w", err)
	}
	defer rows.Close()

	var out []StoredSignal
	for rows.Next() {
		var s StoredSignal
		var signalType string
		var sl, tp1, tp2, tp3, rr, size sql.NullFloat64
		if err := rows.Scan(
			&s.ID, &s.Timestamp, &s.Symbol, &s.Timeframe, &signalType, &s.Confidence, &s.QualityScore,
			&s.ConfluenceCount, &s.EntryPrice, &sl, &tp1, &tp2, &tp3, &rr, &size, &s.Executed,
		); err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		s.SignalType = models.SignalType(signalType)
		s.StopLoss = nullFloat(sl)
		s.TakeProfit1 = nullFloat(tp1)
		s.TakeProfit2 = nullFloat(tp2)
		s.TakeProfit3 = nullFloat(tp3)
		s.RiskReward = nullFloat(rr)
		s.PositionSize = nullFloat(size)
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkExecuted flags a stored signal as traded.
func (db *DB) MarkExecuted(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `UPDATE trade_signals SET executed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking signal %s executed: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("signal %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
