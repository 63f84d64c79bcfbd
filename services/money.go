package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultDepositPercentage applies when a product has no deposit configured.
const DefaultDepositPercentage = 50

var hundred = decimal.NewFromInt(100)

// AmountFromMinorUnits converts a provider-reported amount in minor units
// (cents) into the major-unit decimal stored on orders.
func AmountFromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(hundred)
}

// ParseProviderAmount parses a decimal string amount as reported by PayPal
// (e.g. "42.50").
func ParseProviderAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse provider amount %q: %w", value, err)
	}
	return amount, nil
}

// SplitDeposit computes the up-front payment for a total given the product's
// deposit percentage (nil means the default 50%). The paid amount is rounded
// to 2 decimals; the remainder absorbs the rounding so paid + remaining
// always equals total.
func SplitDeposit(total decimal.Decimal, depositPercentage *int) (paid, remaining decimal.Decimal) {
	pct := DefaultDepositPercentage
	if depositPercentage != nil {
		pct = *depositPercentage
	}
	if pct >= 100 {
		return total, decimal.Zero
	}
	paid = total.Mul(decimal.NewFromInt(int64(pct))).Div(hundred).Round(2)
	remaining = total.Sub(paid)
	return paid, remaining
}
