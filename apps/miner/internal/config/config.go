package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const (
	DefaultEtherscanBaseURL = "https://api.etherscan.io/api"
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com"
)

type Config struct {
	EtherscanAPIKey      string
	WalletAddress        string
	EtherscanBaseURL     string
	CoinGeckoBaseURL     string
	LiquidationTargetUSD float64
	CadenceSeconds       int
	DbURL                string
	KafkaBroker          string
	KafkaTopic           string
	APIPort              int
}

// ConfigError indicates missing or malformed configuration. It is fatal
// and must be surfaced before the mining loop starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	apiKey := os.Getenv("ETHERSCAN_API_KEY")
	if apiKey == "" {
		return nil, &ConfigError{Field: "ETHERSCAN_API_KEY", Reason: "not set"}
	}

	walletAddress := os.Getenv("XYO_WALLET_ADDRESS")
	if walletAddress == "" {
		return nil, &ConfigError{Field: "XYO_WALLET_ADDRESS", Reason: "not set"}
	}
	if err := ValidateWalletAddress(walletAddress); err != nil {
		return nil, err
	}

	return &Config{
		EtherscanAPIKey:      apiKey,
		WalletAddress:        walletAddress,
		EtherscanBaseURL:     getEnv("ETHERSCAN_BASE_URL", DefaultEtherscanBaseURL),
		CoinGeckoBaseURL:     getEnv("COINGECKO_BASE_URL", DefaultCoinGeckoBaseURL),
		LiquidationTargetUSD: getEnvFloat64("LIQUIDATION_TARGET_USD", 15000),
		CadenceSeconds:       getEnvInt("MINING_CADENCE_SECONDS", 10),
		DbURL:                os.Getenv("DB_URL"),
		KafkaBroker:          os.Getenv("KAFKA_BROKER"),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "mining-events"),
		APIPort:              getEnvInt("API_PORT", 8080),
	}, nil
}

// ValidateWalletAddress checks the 0x + 40 hex chars Ethereum address format
func ValidateWalletAddress(address string) error {
	if !strings.HasPrefix(address, "0x") {
		return &ConfigError{Field: "XYO_WALLET_ADDRESS", Reason: "must start with 0x"}
	}
	if len(address) != 42 {
		return &ConfigError{Field: "XYO_WALLET_ADDRESS", Reason: fmt.Sprintf("must be 42 characters, got %d", len(address))}
	}
	if !common.IsHexAddress(address) {
		return &ConfigError{Field: "XYO_WALLET_ADDRESS", Reason: "not a valid hex address"}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
