package assets

import "github.com/ethereum/go-ethereum/common"

// Asset represents a monitored asset with its properties
type Asset struct {
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name"`
	Address     common.Address `json:"address"`
	Decimals    int            `json:"decimals"`
	CoinGeckoID string         `json:"coingecko_id"`
	Native      bool           `json:"native"`
}

// AssetRegistry holds all monitored assets
type AssetRegistry struct {
	assets    map[string]*Asset
	byAddress map[common.Address]*Asset
}

// NewAssetRegistry creates a new asset registry with all monitored assets
func NewAssetRegistry() *AssetRegistry {
	registry := &AssetRegistry{
		assets:    make(map[string]*Asset),
		byAddress: make(map[common.Address]*Asset),
	}

	monitoredAssets := []*Asset{
		{
			Symbol:      "ETH",
			Name:        "Ether",
			Decimals:    18,
			CoinGeckoID: "ethereum",
			Native:      true,
		},
		{
			Symbol:      "XYO",
			Name:        "XYO Network",
			Address:     common.HexToAddress(XYOContractAddress),
			Decimals:    18,
			CoinGeckoID: "xyo-network",
		},
	}

	for _, asset := range monitoredAssets {
		registry.assets[asset.Symbol] = asset
		if !asset.Native {
			registry.byAddress[asset.Address] = asset
		}
	}

	return registry
}

// GetBySymbol returns an asset by its symbol
func (r *AssetRegistry) GetBySymbol(symbol string) (*Asset, bool) {
	asset, exists := r.assets[symbol]
	return asset, exists
}

// GetByAddress returns an asset by its contract address
func (r *AssetRegistry) GetByAddress(address common.Address) (*Asset, bool) {
	asset, exists := r.byAddress[address]
	return asset, exists
}

// GetAll returns all registered assets
func (r *AssetRegistry) GetAll() map[string]*Asset {
	result := make(map[string]*Asset)
	for symbol, asset := range r.assets {
		result[symbol] = asset
	}
	return result
}

// CoinGeckoIDs returns the CoinGecko ids of all registered assets
func (r *AssetRegistry) CoinGeckoIDs() []string {
	ids := make([]string, 0, len(r.assets))
	for _, asset := range r.assets {
		ids = append(ids, asset.CoinGeckoID)
	}
	return ids
}

// Global asset registry instance
var GlobalRegistry = NewAssetRegistry()

// Contract addresses for other components
const (
	XYOContractAddress = "0x55296f69f40Ea6d20E478533C15a6B08b654E758"
)
