// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"
	"time"
)

// PriceRecord is one token price observation. It is passed by value and
// never modified after construction.
type PriceRecord struct {
	Mint string
	// PriceUSD is the token price in US dollars.
	PriceUSD float64
	// PriceNumeraire is the token price in the numeraire asset (SOL).
	PriceNumeraire float64
	Volume24h      float64
	MarketCap      float64
	// Timestamp is the acquisition time in unix seconds.
	Timestamp int64
	Source    string
}

// NewPriceRecord stamps a record with the acquisition time.
func NewPriceRecord(mint string, usd, numeraire float64, source string, acquiredAt time.Time) PriceRecord {
	return PriceRecord{
		Mint:           mint,
		PriceUSD:       usd,
		PriceNumeraire: numeraire,
		Timestamp:      acquiredAt.Unix(),
		Source:         source,
	}
}

// WithMarketData returns a copy carrying 24h volume and market cap.
func (r PriceRecord) WithMarketData(volume24h, marketCap float64) PriceRecord {
	r.Volume24h = volume24h
	r.MarketCap = marketCap
	return r
}

// AcquiredAt returns the acquisition time.
func (r PriceRecord) AcquiredAt() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// Age is the time elapsed since acquisition.
func (r PriceRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.AcquiredAt())
}

// IsFresh reports now - timestamp < ttl.
func (r PriceRecord) IsFresh(now time.Time, ttl time.Duration) bool {
	return r.Age(now) < ttl
}

// ExpiresAt is the first instant at which the record is no longer fresh.
func (r PriceRecord) ExpiresAt(ttl time.Duration) time.Time {
	return r.AcquiredAt().Add(ttl)
}

func (r PriceRecord) String() string {
	return fmt.Sprintf("%s: $%.6f USD, %.6f SOL (source: %s)", r.Mint, r.PriceUSD, r.PriceNumeraire, r.Source)
}

// MarketStats summarizes the resolver state.
type MarketStats struct {
	CachedPrices int
	Sources      []string
	Strategy     string
}
