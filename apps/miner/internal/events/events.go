package events

import (
	"time"
)

const (
	TypeSessionStarted   = "session_started"
	TypePortfolioSample  = "portfolio_sample"
	TypeSessionCompleted = "session_completed"
)

type SessionEvent struct {
	EventType       string    `json:"event_type"`
	SessionID       string    `json:"session_id"`
	WalletAddress   string    `json:"wallet_address"`
	Iteration       int       `json:"iteration,omitempty"`
	ETHBalance      float64   `json:"eth_balance,omitempty"`
	ETHUSD          float64   `json:"eth_usd,omitempty"`
	XYOBalance      float64   `json:"xyo_balance,omitempty"`
	XYOUSD          float64   `json:"xyo_usd,omitempty"`
	TotalUSD        float64   `json:"total_usd,omitempty"`
	TotalIterations int       `json:"total_iterations,omitempty"`
	TotalSeconds    float64   `json:"total_seconds,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
