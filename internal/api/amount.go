package api

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// parseAmount converts a human decimal amount ("1.5") into base units using
// the token's decimal count. Negative amounts, fractional base units, and
// values past uint64 range are rejected.
func parseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}

	base := d.Shift(int32(decimals))
	if !base.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	if base.Cmp(maxAmount) > 0 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}

	return base.BigInt().Uint64(), nil
}

// formatAmount renders base units as a human decimal amount.
func formatAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}
