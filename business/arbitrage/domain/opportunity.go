// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VenuePrice is the implied token price on one venue, in quote units.
type VenuePrice struct {
	Venue string
	Price float64
}

// Comparison is the cross-venue view of one token, produced whether or
// not the spread clears the threshold. Prices are sorted by (price, venue).
type Comparison struct {
	Token     string
	Prices    []VenuePrice
	BestBuy   VenuePrice
	BestSell  VenuePrice
	Spread    float64
	ProfitPct float64
	Timestamp time.Time
}

// PriceMap returns venue -> price.
func (c *Comparison) PriceMap() map[string]float64 {
	m := make(map[string]float64, len(c.Prices))
	for _, p := range c.Prices {
		m[p.Venue] = p.Price
	}
	return m
}

// Opportunity is a comparison whose profit percentage exceeded the
// configured threshold. It is never modified after creation.
type Opportunity struct {
	ID        string
	Token     string
	Prices    []VenuePrice
	BestBuy   VenuePrice
	BestSell  VenuePrice
	Spread    float64
	ProfitPct float64
	Timestamp time.Time
}

// NewOpportunity promotes a comparison, assigning a fresh id.
func NewOpportunity(c *Comparison) *Opportunity {
	prices := make([]VenuePrice, len(c.Prices))
	copy(prices, c.Prices)
	return &Opportunity{
		ID:        uuid.NewString(),
		Token:     c.Token,
		Prices:    prices,
		BestBuy:   c.BestBuy,
		BestSell:  c.BestSell,
		Spread:    c.Spread,
		ProfitPct: c.ProfitPct,
		Timestamp: c.Timestamp,
	}
}

// Summary renders the one-line trade description.
func (o *Opportunity) Summary() string {
	return fmt.Sprintf("Buy on %s at %.6f, Sell on %s at %.6f (%.2f%% profit)",
		o.BestBuy.Venue, o.BestBuy.Price, o.BestSell.Venue, o.BestSell.Price, o.ProfitPct)
}
