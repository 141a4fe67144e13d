package common

import (
	"fmt"
	"strconv"
)

const (
	SOLDecimals  = 9 // SOL has 9 decimals (lamports)
	USDCDecimals = 6 // USDC has 6 decimals (micro)
)

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return formatWithDecimals(lamports, SOLDecimals)
}

// MicroToUSDC converts micro units to USDC string without float precision loss
func MicroToUSDC(micro uint64) string {
	return formatWithDecimals(micro, USDCDecimals)
}

// USDCValue prices a USDC amount at rate, rounded to cents. Display only.
func USDCValue(micro uint64, rate string) (string, error) {
	r, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return "", fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	usdc := float64(micro) / 1e6
	return strconv.FormatFloat(usdc*r, 'f', 2, 64), nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
