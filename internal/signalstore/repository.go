package signalstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// Repository reads and writes strategy signals.
// ⭐ SSOT: 시그널 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a signal repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Filter narrows signal queries. Zero values mean "no constraint".
type Filter struct {
	Symbol     string
	Type       contracts.SignalType
	Strategy   string
	ActiveOnly bool // 만료되지 않은 시그널만
}

// Save upserts a signal by ID
func (r *Repository) Save(ctx context.Context, sig *contracts.Signal) error {
	query := `
		INSERT INTO trading.signals (
			id, symbol, signal_type, strategy, confidence,
			price_target, stop_loss, timeframe, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			confidence = EXCLUDED.confidence,
			price_target = EXCLUDED.price_target,
			stop_loss = EXCLUDED.stop_loss
	`

	_, err := r.pool.Exec(ctx, query,
		sig.ID, sig.Symbol, string(sig.Type), sig.Strategy, sig.Confidence,
		sig.PriceTarget, sig.StopLoss, string(sig.Timeframe), sig.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}
	return nil
}

// List returns signals matching the filter, most recent first
func (r *Repository) List(ctx context.Context, filter Filter) ([]*contracts.Signal, error) {
	query := `
		SELECT id, symbol, signal_type, strategy, confidence,
		       COALESCE(price_target, 0), COALESCE(stop_loss, 0),
		       timeframe, created_at
		FROM trading.signals
		WHERE ($1 = '' OR symbol = $1)
		  AND ($2 = '' OR signal_type = $2)
		  AND ($3 = '' OR strategy = $3)
		  AND (NOT $4 OR expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query,
		filter.Symbol, string(filter.Type), filter.Strategy, filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// ListActiveBuys returns the active buy signals feeding a generation run
func (r *Repository) ListActiveBuys(ctx context.Context) ([]*contracts.Signal, error) {
	return r.List(ctx, Filter{Type: contracts.SignalBuy, ActiveOnly: true})
}

// Expire marks a signal as retired.
// 후보는 시그널 ID를 약한 참조로만 들고 있으므로 독립적으로 만료 가능
func (r *Repository) Expire(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trading.signals SET expires_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to expire signal: %w", err)
	}
	return nil
}

func scanSignals(rows pgx.Rows) ([]*contracts.Signal, error) {
	signals := make([]*contracts.Signal, 0)
	for rows.Next() {
		var sig contracts.Signal
		var sigType, timeframe string
		if err := rows.Scan(
			&sig.ID, &sig.Symbol, &sigType, &sig.Strategy, &sig.Confidence,
			&sig.PriceTarget, &sig.StopLoss, &timeframe, &sig.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.Type = contracts.SignalType(sigType)
		sig.Timeframe = contracts.Timeframe(timeframe)
		signals = append(signals, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("signal rows error: %w", err)
	}
	return signals, nil
}
