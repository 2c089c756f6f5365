// Package domain contains the core domain types for the chain context.
package domain

import "time"

// TokenBalance is an SPL token account balance as reported by the node.
// Amount is the raw integer amount as a decimal string.
type TokenBalance struct {
	Account  string
	Amount   string
	Decimals uint8
}

// PoolVaults identifies a pool by the two token accounts holding its reserves.
type PoolVaults struct {
	Venue      string
	Pool       string
	BaseVault  string
	QuoteVault string
}

// PoolReserves is a snapshot of both sides of a pool.
type PoolReserves struct {
	Venue string
	Pool  string
	Base  TokenBalance
	Quote TokenBalance
}

// ReaderStatus describes the balance reader connection.
type ReaderStatus struct {
	Endpoint    string
	CircuitOpen bool
	LastSuccess time.Time
	LastLatency time.Duration
}
