package api

// BalanceResponse represents the API response for wallet balance information
type BalanceResponse struct {
	WalletAddress string                  `json:"wallet_address"`
	Balances      map[string]TokenBalance `json:"balances"`
}

// TokenBalance represents balance information for a specific asset
type TokenBalance struct {
	Balance  string `json:"balance"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address,omitempty"`
	Decimals int    `json:"decimals"`
}

// ErrorResponse represents the API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
