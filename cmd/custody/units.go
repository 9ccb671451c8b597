package main

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var lamportsPerSol = decimal.New(1, 9)

// parseSol converts an amount of SOL to lamports. Amounts with more than 9
// decimals are rejected.
func parseSol(amount string) (uint64, error) {
	sol, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !sol.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	lamports := sol.Mul(lamportsPerSol)
	if !lamports.Equal(lamports.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has too many decimals", amount)
	}
	if lamports.GreaterThan(decimal.NewFromInt(int64(^uint64(0) >> 1))) {
		return 0, fmt.Errorf("amount %s is too large", amount)
	}
	return uint64(lamports.IntPart()), nil
}

// formatSol converts lamports to an amount of SOL.
func formatSol(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
