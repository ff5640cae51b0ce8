package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"miningauto/apps/miner/internal/assets"
	"miningauto/apps/miner/internal/etherscan"
	"miningauto/apps/miner/internal/session"
)

// BalanceHandler handles on-demand balance lookups
type BalanceHandler struct {
	balances      session.BalanceSource
	logger        *zap.Logger
	assetRegistry *assets.AssetRegistry
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balances session.BalanceSource, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		balances:      balances,
		logger:        logger,
		assetRegistry: assets.GlobalRegistry,
	}
}

// GetBalance handles GET /api/balance/{wallet_address}
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	walletAddress := vars["wallet_address"]

	if walletAddress == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing_wallet_address", "Wallet address is required")
		return
	}

	if !common.IsHexAddress(walletAddress) {
		h.writeErrorResponse(w, http.StatusBadRequest, "invalid_wallet_address", "Invalid Ethereum address format")
		return
	}

	balances := make(map[string]TokenBalance)
	for symbol, asset := range h.assetRegistry.GetAll() {
		balance, err := h.getAssetBalance(r, walletAddress, asset)
		if err != nil {
			h.logger.Error("Failed to get asset balance",
				zap.String("asset", asset.Symbol),
				zap.String("address", walletAddress),
				zap.Error(err))
			// Continue with other assets instead of failing completely
			balance = "0"
		}

		entry := TokenBalance{
			Balance:  balance,
			Symbol:   asset.Symbol,
			Decimals: asset.Decimals,
		}
		if !asset.Native {
			entry.Address = asset.Address.Hex()
		}
		balances[symbol] = entry
	}

	response := BalanceResponse{
		WalletAddress: walletAddress,
		Balances:      balances,
	}

	h.logger.Info("Retrieved wallet balances",
		zap.String("wallet_address", walletAddress),
		zap.Int("asset_count", len(balances)))

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *BalanceHandler) getAssetBalance(r *http.Request, walletAddress string, asset *assets.Asset) (string, error) {
	if asset.Native {
		wei, err := h.balances.ETHBalance(r.Context(), walletAddress)
		if err != nil {
			return "", err
		}
		return etherscan.ToDecimalString(wei, asset.Decimals), nil
	}

	raw, err := h.balances.TokenBalance(r.Context(), asset.Address.Hex(), walletAddress)
	if err != nil {
		return "", err
	}
	return etherscan.ToDecimalString(raw, asset.Decimals), nil
}

// writeJSONResponse writes a JSON response with the specified status code
func (h *BalanceHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func (h *BalanceHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	errorResponse := ErrorResponse{
		Error:   errorCode,
		Message: message,
	}
	h.writeJSONResponse(w, statusCode, errorResponse)
}
