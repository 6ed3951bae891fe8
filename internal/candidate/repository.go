package candidate

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tradepilot/backend/internal/contracts"
)

// Repository persists candidate generation runs.
// ⭐ SSOT: 후보 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a candidate repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun replaces the stored result set for a run.
// 한 실행의 후보들은 원자적으로 교체됨 (부분 저장 없음)
func (r *Repository) SaveRun(ctx context.Context, runID string, generatedAt time.Time, candidates []*contracts.Candidate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO trading.candidate_runs (run_id, generated_at, candidate_count)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			candidate_count = EXCLUDED.candidate_count`,
		runID, generatedAt, len(candidates))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM trading.candidates WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to clear old candidates: %w", err)
	}

	query := `
		INSERT INTO trading.candidates (
			run_id, symbol, company_name, price, change, change_percent,
			volume, high, low, estimated,
			profit_projection, profit_confidence, position_size, position_shares,
			risk_score, signal_strength, strategy,
			automation_status, time_sensitivity,
			entry_target, stop_loss, profit_target, signal_ids, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24
		)
	`
	for _, c := range candidates {
		_, err := tx.Exec(ctx, query,
			runID, c.Symbol, c.CompanyName, c.Price, c.Change, c.ChangePercent,
			c.Volume, c.High, c.Low, c.Estimated,
			c.ProfitProjection, c.ProfitConfidence, c.PositionSize, c.PositionShares,
			c.RiskScore, c.SignalStrength, c.Strategy,
			string(c.AutomationStatus), string(c.TimeSensitivity),
			c.EntryTarget, c.StopLoss, c.ProfitTarget, c.SignalIDs, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit candidate run: %w", err)
	}
	return nil
}

// LatestRunID returns the most recent run's ID, or "" when none exist
func (r *Repository) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := r.pool.QueryRow(ctx,
		`SELECT run_id FROM trading.candidate_runs
		 ORDER BY generated_at DESC LIMIT 1`).Scan(&runID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return runID, nil
}

// GetRun returns every candidate stored for a run
func (r *Repository) GetRun(ctx context.Context, runID string) ([]*contracts.Candidate, error) {
	query := `
		SELECT symbol, company_name, price, change, change_percent,
		       volume, high, low, estimated,
		       profit_projection, profit_confidence, position_size, position_shares,
		       risk_score, signal_strength, strategy,
		       automation_status, time_sensitivity,
		       entry_target, stop_loss, profit_target, signal_ids, created_at
		FROM trading.candidates
		WHERE run_id = $1
		ORDER BY profit_projection DESC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*contracts.Candidate, 0)
	for rows.Next() {
		var c contracts.Candidate
		var status, sensitivity string
		if err := rows.Scan(
			&c.Symbol, &c.CompanyName, &c.Price, &c.Change, &c.ChangePercent,
			&c.Volume, &c.High, &c.Low, &c.Estimated,
			&c.ProfitProjection, &c.ProfitConfidence, &c.PositionSize, &c.PositionShares,
			&c.RiskScore, &c.SignalStrength, &c.Strategy,
			&status, &sensitivity,
			&c.EntryTarget, &c.StopLoss, &c.ProfitTarget, &c.SignalIDs, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.AutomationStatus = contracts.AutomationStatus(status)
		c.TimeSensitivity = contracts.TimeSensitivity(sensitivity)
		candidates = append(candidates, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidate rows error: %w", err)
	}
	return candidates, nil
}

// UpdateAutomationStatus records a status transition for a symbol's
// latest candidate
func (r *Repository) UpdateAutomationStatus(ctx context.Context, runID, symbol string, status contracts.AutomationStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE trading.candidates SET automation_status = $3
		 WHERE run_id = $1 AND symbol = $2`,
		runID, symbol, string(status))
	if err != nil {
		return fmt.Errorf("failed to update automation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no candidate for %s in run %s", symbol, runID)
	}
	return nil
}
