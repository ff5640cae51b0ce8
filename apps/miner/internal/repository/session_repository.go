package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"miningauto/apps/miner/internal/model"
)

// SessionRepository persists mining sessions and their portfolio samples.
// It satisfies the session.Sink interface.
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

func (r *SessionRepository) SessionStarted(ctx context.Context, session model.MiningSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mining_sessions (session_id, wallet_address, duration_minutes, cadence_seconds, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, session.SessionID, session.WalletAddress, session.DurationMinutes, session.CadenceSeconds, session.Status, session.StartedAt)

	if err != nil {
		return fmt.Errorf("failed to insert mining session: %w", err)
	}

	r.logger.Info("Stored mining session",
		zap.String("session_id", session.SessionID),
		zap.String("wallet_address", session.WalletAddress))
	return nil
}

func (r *SessionRepository) SampleRecorded(ctx context.Context, sample model.PortfolioSample) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolio_samples (session_id, iteration, sampled_at, wallet_address, eth_balance, eth_usd, xyo_balance, xyo_usd, total_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, iteration) DO NOTHING
	`, sample.SessionID, sample.Iteration, sample.SampledAt, sample.WalletAddress,
		sample.ETHBalance, sample.ETHUSD, sample.XYOBalance, sample.XYOUSD, sample.TotalUSD)

	if err != nil {
		return fmt.Errorf("failed to insert portfolio sample: %w", err)
	}
	return nil
}

func (r *SessionRepository) SessionCompleted(ctx context.Context, session model.MiningSession) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE mining_sessions
		SET status = $2, completed_at = $3, total_iterations = $4, total_seconds = $5, final_total_usd = $6
		WHERE session_id = $1
	`, session.SessionID, session.Status, session.CompletedAt, session.TotalIterations, session.TotalSeconds, session.FinalTotalUSD)

	if err != nil {
		return fmt.Errorf("failed to update mining session: %w", err)
	}

	r.logger.Info("Completed mining session",
		zap.String("session_id", session.SessionID),
		zap.Int("total_iterations", session.TotalIterations))
	return nil
}

// GetSession returns a stored session by id
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*model.MiningSession, error) {
	var session model.MiningSession
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, wallet_address, duration_minutes, cadence_seconds, status, started_at, completed_at, total_iterations, total_seconds, final_total_usd
		FROM mining_sessions
		WHERE session_id = $1
	`, sessionID).Scan(&session.SessionID, &session.WalletAddress, &session.DurationMinutes,
		&session.CadenceSeconds, &session.Status, &session.StartedAt, &session.CompletedAt,
		&session.TotalIterations, &session.TotalSeconds, &session.FinalTotalUSD)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mining session: %w", err)
	}

	return &session, nil
}

// GetSamples returns the samples of a session in iteration order
func (r *SessionRepository) GetSamples(ctx context.Context, sessionID string) ([]model.PortfolioSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, iteration, sampled_at, wallet_address, eth_balance, eth_usd, xyo_balance, xyo_usd, total_usd
		FROM portfolio_samples
		WHERE session_id = $1
		ORDER BY iteration
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio samples: %w", err)
	}
	defer rows.Close()

	var samples []model.PortfolioSample
	for rows.Next() {
		var sample model.PortfolioSample
		if err := rows.Scan(&sample.SessionID, &sample.Iteration, &sample.SampledAt, &sample.WalletAddress,
			&sample.ETHBalance, &sample.ETHUSD, &sample.XYOBalance, &sample.XYOUSD, &sample.TotalUSD); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio sample: %w", err)
		}
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio samples: %w", err)
	}

	return samples, nil
}
