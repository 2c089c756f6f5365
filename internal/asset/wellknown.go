package asset

// Mainnet mints.
const (
	MintWrappedSOL Mint = "So11111111111111111111111111111111111111112"
	MintUSDC       Mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT       Mint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	MintJUP        Mint = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	MintBONK       Mint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

var (
	SOL  = NewAssetWithName(MintWrappedSOL, "SOL", "Wrapped SOL", 9)
	USDC = NewAssetWithName(MintUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(MintUSDT, "USDT", "Tether USD", 6)
	JUP  = NewAssetWithName(MintJUP, "JUP", "Jupiter", 6)
	BONK = NewAssetWithName(MintBONK, "BONK", "Bonk", 5)
)

// DefaultRegistry returns a registry with the well-known mints.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range []*Asset{SOL, USDC, USDT, JUP, BONK} {
		r.Register(a)
	}
	return r
}
