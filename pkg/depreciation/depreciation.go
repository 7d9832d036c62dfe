// Package depreciation computes device ages, depreciation rates and buyout
// prices for leased hardware. All monetary arithmetic uses exact decimals;
// binary floating point is never involved, so repeated runs always produce
// identical cent values.
package depreciation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/northfleet/assetsync/pkg/assets"
)

// PurchaseDateLayout is the ISO calendar date form used by the registry.
const PurchaseDateLayout = "2006-01-02"

var (
	// vatRate is the 21% VAT applied on top of original cost.
	vatRate = decimal.RequireFromString("0.21")

	// minimumRate applies to devices older than 48 months. It is deliberately
	// lower than the month-48 table rates for Tablets and Phones; confirmed
	// business rule, not a lookup fallback.
	minimumRate = decimal.RequireFromString("0.102")
)

// ParsePurchaseDate parses a registry purchase date. An empty string returns
// the zero time with no error; a missing date is normal and short-circuits
// downstream calculation.
func ParsePurchaseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(PurchaseDateLayout, s)
}

// MonthsSincePurchase returns the number of full calendar months elapsed
// between purchase and today. A month counts as complete only once today's
// day-of-month reaches the purchase day-of-month. The result is floored at 1:
// an asset is never zero months old. A zero purchase time returns 0.
func MonthsSincePurchase(purchase, today time.Time) int {
	if purchase.IsZero() {
		return 0
	}

	months := (today.Year()-purchase.Year())*12 + int(today.Month()) - int(purchase.Month())
	if today.Day() < purchase.Day() {
		months--
	}

	if months < 1 {
		return 1
	}
	return months
}

// RateForMonth returns the fractional depreciation rate for a device of the
// given age and class. Months 1–48 use the exact table entry; beyond 48 the
// fixed minimum rate applies regardless of class. Ages below 1 clamp to the
// first month.
func RateForMonth(month int, class assets.DeviceClass) decimal.Decimal {
	if month > len(rateTable) {
		return minimumRate
	}
	if month < 1 {
		month = 1
	}

	classRates := rates[month-1]
	rate, ok := classRates[class]
	if !ok {
		rate = classRates[assets.ClassComputer]
	}
	return rate
}

// CostWithVAT computes the VAT-inclusive cost from the registry's original
// cost string, rounded to 2 decimal places with ties away from zero. The
// second return is false when the cost is absent or unparseable.
func CostWithVAT(originalCost string) (decimal.Decimal, bool) {
	if originalCost == "" {
		return decimal.Decimal{}, false
	}
	cost, err := decimal.NewFromString(originalCost)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return cost.Add(cost.Mul(vatRate)).Round(2), true
}

// BuyoutPrice computes the buyout price from a VAT-inclusive cost and a
// fractional depreciation rate, rounded to 2 decimal places with ties away
// from zero.
func BuyoutPrice(costWithVAT, rate decimal.Decimal) decimal.Decimal {
	return costWithVAT.Mul(rate).Round(2)
}
