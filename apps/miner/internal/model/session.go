package model

import (
	"time"
)

type MiningSession struct {
	SessionID       string     `db:"session_id"`
	WalletAddress   string     `db:"wallet_address"`
	DurationMinutes float64    `db:"duration_minutes"`
	CadenceSeconds  float64    `db:"cadence_seconds"`
	Status          string     `db:"status"` // "running", "completed" or "aborted"
	StartedAt       time.Time  `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"` // nullable field
	TotalIterations int        `db:"total_iterations"`
	TotalSeconds    float64    `db:"total_seconds"`
	FinalTotalUSD   *float64   `db:"final_total_usd"` // nullable field
}

type PortfolioSample struct {
	SessionID     string    `db:"session_id"`
	Iteration     int       `db:"iteration"`
	SampledAt     time.Time `db:"sampled_at"`
	WalletAddress string    `db:"wallet_address"`
	ETHBalance    float64   `db:"eth_balance"`
	ETHUSD        float64   `db:"eth_usd"`
	XYOBalance    float64   `db:"xyo_balance"`
	XYOUSD        float64   `db:"xyo_usd"`
	TotalUSD      float64   `db:"total_usd"`
}
