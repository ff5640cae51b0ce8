package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client is a read-only client for the Etherscan account API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// apiResponse represents the Etherscan response envelope
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// NewClient creates a new Etherscan client
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// ETHBalance returns the native ETH balance of a wallet in wei
func (c *Client) ETHBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "balance")
	params.Set("address", walletAddress)
	params.Set("tag", "latest")
	return c.fetchBalance(ctx, params)
}

// TokenBalance returns the ERC20 token balance of a wallet in the token's
// smallest unit
func (c *Client) TokenBalance(ctx context.Context, contractAddress, walletAddress string) (*big.Int, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", contractAddress)
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokenbalance")
	params.Set("contractaddress", contractAddress)
	params.Set("address", walletAddress)
	params.Set("tag", "latest")
	return c.fetchBalance(ctx, params)
}

func (c *Client) fetchBalance(ctx context.Context, params url.Values) (*big.Int, error) {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Etherscan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Etherscan returned status %d", resp.StatusCode)
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode Etherscan response: %w", err)
	}

	// Etherscan signals API-level errors with status "0"
	if data.Status == "0" && data.Message != "OK" {
		c.logger.Warn("Etherscan API error",
			zap.String("message", data.Message),
			zap.String("result", data.Result))
		return nil, fmt.Errorf("Etherscan API error: %s", data.Result)
	}

	balance, ok := new(big.Int).SetString(data.Result, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse balance %q", data.Result)
	}

	return balance, nil
}

// ToFloat converts a smallest-unit amount to a float64 using the asset's decimals.
// Precision loss is acceptable here; the value feeds USD estimates, not accounting.
func ToFloat(amount *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(f, divisor).Float64()
	return value
}

// ToDecimalString converts a smallest-unit amount to a lossless decimal string
func ToDecimalString(amount *big.Int, decimals int) string {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	wholePart := new(big.Int).Div(amount, divisor)
	remainder := new(big.Int).Mod(amount, divisor)

	if remainder.Cmp(big.NewInt(0)) == 0 {
		return wholePart.String()
	}

	// Pad remainder with leading zeros to match decimal places
	remainderStr := remainder.String()
	for len(remainderStr) < decimals {
		remainderStr = "0" + remainderStr
	}
	// Remove trailing zeros
	remainderStr = strings.TrimRight(remainderStr, "0")
	if remainderStr == "" {
		return wholePart.String()
	}
	return wholePart.String() + "." + remainderStr
}
