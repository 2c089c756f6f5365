package asset

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a concurrency-safe mint → Asset index.
type Registry struct {
	mu       sync.RWMutex
	byMint   map[Mint]*Asset
	bySymbol map[string]*Asset
}

func NewRegistry() *Registry {
	return &Registry{
		byMint:   make(map[Mint]*Asset),
		bySymbol: make(map[string]*Asset),
	}
}

// Register panics on a duplicate mint.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMint[a.mint]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.mint))
	}
	r.byMint[a.mint] = a
	if _, taken := r.bySymbol[a.symbol]; !taken {
		r.bySymbol[a.symbol] = a
	}
}

// Upsert registers a or replaces the entry with the same mint.
func (r *Registry) Upsert(a *Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byMint[a.mint]; ok && r.bySymbol[old.symbol] == old {
		delete(r.bySymbol, old.symbol)
	}
	r.byMint[a.mint] = a
	if _, taken := r.bySymbol[a.symbol]; !taken {
		r.bySymbol[a.symbol] = a
	}
}

func (r *Registry) Get(mint Mint) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byMint[mint]
	return a, ok
}

// GetBySymbol returns the first asset registered under symbol.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.bySymbol[symbol]
	return a, ok
}

// Label returns the symbol when known, otherwise the shortened mint.
func (r *Registry) Label(mint Mint) string {
	if a, ok := r.Get(mint); ok {
		return a.Symbol()
	}
	return mint.Short()
}

// All returns assets sorted by symbol.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	result := make([]*Asset, 0, len(r.byMint))
	for _, a := range r.byMint {
		result = append(result, a)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].symbol != result[j].symbol {
			return result[i].symbol < result[j].symbol
		}
		return result[i].mint < result[j].mint
	})
	return result
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMint)
}
