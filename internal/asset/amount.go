package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var ErrInvalidRaw = errors.New("asset: raw amount is not an unsigned integer")

// Amount is an on-chain token quantity in base units plus its decimal exponent.
type Amount struct {
	raw      *big.Int
	decimals uint8
}

// ParseRaw parses a base-10 unsigned integer such as the "amount" field of
// getTokenAccountBalance. Signs, whitespace and fractions are rejected.
func ParseRaw(raw string, decimals uint8) (Amount, error) {
	if raw == "" {
		return Amount{}, fmt.Errorf("%w: empty", ErrInvalidRaw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidRaw, raw)
		}
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidRaw, raw)
	}
	return Amount{raw: v, decimals: decimals}, nil
}

// NewAmountFromUint64 wraps a raw uint64.
func NewAmountFromUint64(raw uint64, decimals uint8) Amount {
	return Amount{raw: new(big.Int).SetUint64(raw), decimals: decimals}
}

// Raw returns a copy of the base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

func (a Amount) Decimals() uint8 { return a.decimals }

func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// ToDecimal returns raw / 10^decimals without rounding.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.decimals))
}

// String renders the UI amount, e.g. "1.5".
func (a Amount) String() string {
	return a.ToDecimal().String()
}
