package asset

import (
	"errors"
	"fmt"
)

// Mint is a base58-encoded SPL token mint address.
type Mint string

var ErrInvalidMint = errors.New("asset: invalid mint address")

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Index = func() [256]bool {
	var idx [256]bool
	for i := 0; i < len(base58Alphabet); i++ {
		idx[base58Alphabet[i]] = true
	}
	return idx
}()

// ParseMint validates length and alphabet. It does not decode to 32 bytes.
func ParseMint(s string) (Mint, error) {
	if len(s) < 32 || len(s) > 44 {
		return "", fmt.Errorf("%w: %q has length %d", ErrInvalidMint, s, len(s))
	}
	for i := 0; i < len(s); i++ {
		if !base58Index[s[i]] {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidMint, s, s[i])
		}
	}
	return Mint(s), nil
}

func (m Mint) String() string { return string(m) }

// Short renders the mint as "abcd…wxyz" for logs and the TUI.
func (m Mint) Short() string {
	if len(m) <= 10 {
		return string(m)
	}
	return string(m[:4]) + "…" + string(m[len(m)-4:])
}
