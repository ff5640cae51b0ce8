package config

import (
	"errors"
	"testing"
)

const testWallet = "0x0B8fA6F76eB75ae3a4ca28eb3020DFC4503F2136"

func TestNewConfig(t *testing.T) {
	t.Run("MissingAPIKey", func(t *testing.T) {
		t.Setenv("ETHERSCAN_API_KEY", "")
		t.Setenv("XYO_WALLET_ADDRESS", testWallet)

		_, err := NewConfig()
		if err == nil {
			t.Fatal("Expected error for missing ETHERSCAN_API_KEY")
		}
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %T", err)
		}
		if cfgErr.Field != "ETHERSCAN_API_KEY" {
			t.Errorf("Expected field ETHERSCAN_API_KEY, got %s", cfgErr.Field)
		}
	})

	t.Run("MissingWalletAddress", func(t *testing.T) {
		t.Setenv("ETHERSCAN_API_KEY", "test-key")
		t.Setenv("XYO_WALLET_ADDRESS", "")

		_, err := NewConfig()
		if err == nil {
			t.Fatal("Expected error for missing XYO_WALLET_ADDRESS")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("ETHERSCAN_API_KEY", "test-key")
		t.Setenv("XYO_WALLET_ADDRESS", testWallet)
		t.Setenv("LIQUIDATION_TARGET_USD", "")
		t.Setenv("MINING_CADENCE_SECONDS", "")
		t.Setenv("API_PORT", "")

		cfg, err := NewConfig()
		if err != nil {
			t.Fatalf("Expected valid config, got error: %v", err)
		}
		if cfg.LiquidationTargetUSD != 15000 {
			t.Errorf("Expected default target 15000, got %f", cfg.LiquidationTargetUSD)
		}
		if cfg.CadenceSeconds != 10 {
			t.Errorf("Expected default cadence 10, got %d", cfg.CadenceSeconds)
		}
		if cfg.APIPort != 8080 {
			t.Errorf("Expected default API port 8080, got %d", cfg.APIPort)
		}
		if cfg.EtherscanBaseURL != DefaultEtherscanBaseURL {
			t.Errorf("Expected default Etherscan base URL, got %s", cfg.EtherscanBaseURL)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("ETHERSCAN_API_KEY", "test-key")
		t.Setenv("XYO_WALLET_ADDRESS", testWallet)
		t.Setenv("LIQUIDATION_TARGET_USD", "2500.50")
		t.Setenv("MINING_CADENCE_SECONDS", "5")
		t.Setenv("ETHERSCAN_BASE_URL", "http://localhost:9999/api")

		cfg, err := NewConfig()
		if err != nil {
			t.Fatalf("Expected valid config, got error: %v", err)
		}
		if cfg.LiquidationTargetUSD != 2500.50 {
			t.Errorf("Expected target 2500.50, got %f", cfg.LiquidationTargetUSD)
		}
		if cfg.CadenceSeconds != 5 {
			t.Errorf("Expected cadence 5, got %d", cfg.CadenceSeconds)
		}
		if cfg.EtherscanBaseURL != "http://localhost:9999/api" {
			t.Errorf("Unexpected Etherscan base URL: %s", cfg.EtherscanBaseURL)
		}
	})
}

func TestValidateWalletAddress(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		if err := ValidateWalletAddress(testWallet); err != nil {
			t.Errorf("Expected valid address, got error: %v", err)
		}
	})

	t.Run("MissingPrefix", func(t *testing.T) {
		if err := ValidateWalletAddress("0B8fA6F76eB75ae3a4ca28eb3020DFC4503F213600"); err == nil {
			t.Error("Expected error for address without 0x prefix")
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		if err := ValidateWalletAddress("0x0B8fA6F76eB75ae3"); err == nil {
			t.Error("Expected error for short address")
		}
	})

	t.Run("NonHex", func(t *testing.T) {
		if err := ValidateWalletAddress("0xZZ8fA6F76eB75ae3a4ca28eb3020DFC4503F2136"); err == nil {
			t.Error("Expected error for non-hex address")
		}
	})
}
