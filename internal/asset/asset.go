// Package asset holds SPL token metadata and raw-amount conversion.
package asset

// Asset is token metadata keyed by mint. The symbol is display-only.
type Asset struct {
	mint     Mint
	symbol   string
	name     string
	decimals uint8
}

// NewAsset panics on an empty symbol or more than 30 decimals.
func NewAsset(mint Mint, symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	return &Asset{mint: mint, symbol: symbol, decimals: decimals}
}

func NewAssetWithName(mint Mint, symbol, name string, decimals uint8) *Asset {
	a := NewAsset(mint, symbol, decimals)
	a.name = name
	return a
}

func (a *Asset) Mint() Mint { return a.mint }

func (a *Asset) Symbol() string { return a.symbol }

func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

func (a *Asset) Decimals() uint8 { return a.decimals }

func (a *Asset) String() string { return a.symbol }

func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.mint == other.mint
}
