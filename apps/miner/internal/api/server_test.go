package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"miningauto/apps/miner/internal/config"
	"miningauto/apps/miner/internal/session"
)

const testWallet = "0x0B8fA6F76eB75ae3a4ca28eb3020DFC4503F2136"

type fakeBalances struct {
	err error
}

func (f *fakeBalances) ETHBalance(_ context.Context, _ string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return big.NewInt(1500000000000000000), nil // 1.5 ETH
}

func (f *fakeBalances) TokenBalance(_ context.Context, _, _ string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := new(big.Int).SetString("250000000000000000000", 10) // 250 XYO
	return raw, nil
}

type fakePrices struct{}

func (fakePrices) USDPrices(_ context.Context, ids []string) (map[string]float64, error) {
	return map[string]float64{"ethereum": 2000, "xyo-network": 0.005}, nil
}

func newTestServer(balances session.BalanceSource) *Server {
	cfg := &config.Config{WalletAddress: testWallet}
	runner := session.NewRunner(cfg, balances, fakePrices{}, nil, &bytes.Buffer{}, 10*time.Second, zap.NewNop())
	return NewServer(0, runner, balances, zap.NewNop())
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(&fakeBalances{})
	router := server.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", body["status"])
	}
}

func TestGetSession(t *testing.T) {
	server := newTestServer(&fakeBalances{})
	router := server.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var snapshot session.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if snapshot.State != session.StateValidating {
		t.Errorf("Expected state %s before the loop starts, got %s", session.StateValidating, snapshot.State)
	}
	if snapshot.WalletAddress != testWallet {
		t.Errorf("Expected wallet %s, got %s", testWallet, snapshot.WalletAddress)
	}
}

func TestGetBalance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := newTestServer(&fakeBalances{})
		router := server.setupRoutes()

		req := httptest.NewRequest(http.MethodGet, "/api/balance/"+testWallet, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var body BalanceResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.WalletAddress != testWallet {
			t.Errorf("Expected wallet %s, got %s", testWallet, body.WalletAddress)
		}
		if got := body.Balances["ETH"].Balance; got != "1.5" {
			t.Errorf("Expected ETH balance 1.5, got %s", got)
		}
		if got := body.Balances["XYO"].Balance; got != "250" {
			t.Errorf("Expected XYO balance 250, got %s", got)
		}
	})

	t.Run("InvalidAddress", func(t *testing.T) {
		server := newTestServer(&fakeBalances{})
		router := server.setupRoutes()

		req := httptest.NewRequest(http.MethodGet, "/api/balance/not-an-address", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rec.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}
		if body.Error != "invalid_wallet_address" {
			t.Errorf("Expected invalid_wallet_address error, got %s", body.Error)
		}
	})

	t.Run("UpstreamFailureFallsBackToZero", func(t *testing.T) {
		server := newTestServer(&fakeBalances{err: errors.New("etherscan down")})
		router := server.setupRoutes()

		req := httptest.NewRequest(http.MethodGet, "/api/balance/"+testWallet, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var body BalanceResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if got := body.Balances["ETH"].Balance; got != "0" {
			t.Errorf("Expected fallback balance 0, got %s", got)
		}
	})
}
