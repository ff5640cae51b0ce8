package repository

import (
	"database/sql"
	"fmt"
)

// InitMigration initializes the database. In production, this would use a proper migration
// library like go-migrate
func InitMigration(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS mining_sessions (
			session_id UUID PRIMARY KEY,
			wallet_address VARCHAR(42) NOT NULL,
			duration_minutes DOUBLE PRECISION NOT NULL,
			cadence_seconds DOUBLE PRECISION NOT NULL,
			status VARCHAR(20) NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			total_iterations INTEGER NOT NULL DEFAULT 0,
			total_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			final_total_usd DECIMAL(20,2)
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_samples (
			session_id UUID NOT NULL,
			iteration INTEGER NOT NULL,
			sampled_at TIMESTAMP NOT NULL,
			wallet_address VARCHAR(42) NOT NULL,
			eth_balance DECIMAL(30,18) NOT NULL,
			eth_usd DECIMAL(20,2) NOT NULL,
			xyo_balance DECIMAL(30,18) NOT NULL,
			xyo_usd DECIMAL(20,2) NOT NULL,
			total_usd DECIMAL(20,2) NOT NULL,
			PRIMARY KEY (session_id, iteration)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_samples_wallet_date ON portfolio_samples (wallet_address, sampled_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}
