package main

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// formatUnits renders a base-unit amount as a whole-token decimal string,
// matching the representation the server uses in its responses.
func formatUnits(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}
