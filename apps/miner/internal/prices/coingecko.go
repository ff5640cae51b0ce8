package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client fetches USD prices from the CoinGecko simple/price API
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	cache       map[string]*priceCache
	cacheMutex  sync.RWMutex
	cacheExpiry time.Duration
}

// priceCache stores cached price data
type priceCache struct {
	price     float64
	timestamp time.Time
}

// coinGeckoResponse represents the API response: coin id -> currency -> price
type coinGeckoResponse map[string]map[string]float64

// NewClient creates a new CoinGecko price client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:      logger,
		cache:       make(map[string]*priceCache),
		cacheExpiry: 5 * time.Minute,
	}
}

// USDPrices fetches USD prices for the given CoinGecko coin ids
func (c *Client) USDPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	result := make(map[string]float64)
	toFetch := []string{}

	// Check cache first
	c.cacheMutex.RLock()
	for _, id := range ids {
		if cached, exists := c.cache[id]; exists && time.Since(cached.timestamp) < c.cacheExpiry {
			result[id] = cached.price
		} else {
			toFetch = append(toFetch, id)
		}
	}
	c.cacheMutex.RUnlock()

	if len(toFetch) > 0 {
		fetched, err := c.fetchPrices(ctx, toFetch)
		if err != nil {
			return nil, err
		}

		c.logger.Info("Fetched USD prices from CoinGecko", zap.Int("coins", len(fetched)))

		c.cacheMutex.Lock()
		for id, price := range fetched {
			c.cache[id] = &priceCache{
				price:     price,
				timestamp: time.Now(),
			}
			result[id] = price
		}
		c.cacheMutex.Unlock()
	}

	return result, nil
}

func (c *Client) fetchPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CoinGecko returned status %d", resp.StatusCode)
	}

	var data coinGeckoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode CoinGecko response: %w", err)
	}

	result := make(map[string]float64)
	for _, id := range ids {
		currencies, exists := data[id]
		if !exists {
			return nil, fmt.Errorf("price not found for %s", id)
		}
		price, exists := currencies["usd"]
		if !exists {
			return nil, fmt.Errorf("USD price not found for %s", id)
		}
		result[id] = price
	}

	return result, nil
}
