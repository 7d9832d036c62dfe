package depreciation

import (
	"github.com/shopspring/decimal"

	"github.com/northfleet/assetsync/pkg/assets"
)

// tableRow holds the depreciation percentages for one month of age.
// Percentages are kept as strings so the table parses into exact decimals;
// no float ever touches a rate.
type tableRow struct {
	computers string
	tablets   string
	phones    string
}

// rateTable is the normative depreciation table, indexed by month-1 for
// months 1 through 48. It is a compile-time constant and must never be
// mutated at runtime.
var rateTable = [48]tableRow{
	{"63.75", "75.25", "75.25"},
	{"61.00", "72.50", "72.50"},
	{"58.25", "69.75", "69.75"},
	{"55.50", "67.00", "67.00"},
	{"52.75", "64.25", "64.25"},
	{"50.00", "61.50", "61.50"},
	{"47.25", "58.75", "58.75"},
	{"44.50", "56.00", "56.00"},
	{"41.75", "53.25", "53.25"},
	{"39.00", "50.50", "50.50"},
	{"36.25", "47.75", "47.75"},
	{"35.00", "45.00", "45.00"},
	{"34.25", "43.75", "43.75"},
	{"33.50", "42.50", "42.50"},
	{"32.75", "41.25", "41.25"},
	{"32.00", "40.00", "40.00"},
	{"31.25", "38.75", "38.75"},
	{"30.50", "37.50", "37.50"},
	{"29.75", "36.25", "36.25"},
	{"29.00", "35.00", "35.00"},
	{"28.25", "33.75", "33.75"},
	{"27.50", "32.50", "32.50"},
	{"26.75", "31.25", "31.25"},
	{"26.00", "30.00", "30.00"},
	{"25.59", "29.59", "28.92"},
	{"25.18", "29.18", "27.84"},
	{"24.77", "28.77", "26.76"},
	{"24.36", "28.36", "25.68"},
	{"23.95", "27.95", "24.60"},
	{"23.54", "27.54", "23.52"},
	{"23.13", "27.13", "22.44"},
	{"22.72", "26.72", "21.36"},
	{"22.31", "26.31", "20.28"},
	{"21.90", "25.90", "19.20"},
	{"21.49", "25.49", "18.12"},
	{"21.00", "25.00", "17.00"},
	{"20.10", "24.10", "16.55"},
	{"19.20", "23.20", "16.10"},
	{"18.30", "22.30", "15.65"},
	{"17.40", "21.40", "15.20"},
	{"16.50", "20.50", "14.75"},
	{"15.60", "19.60", "14.30"},
	{"14.70", "18.70", "13.85"},
	{"13.80", "17.80", "13.40"},
	{"12.90", "16.90", "12.95"},
	{"12.00", "16.00", "12.50"},
	{"11.10", "15.10", "12.05"},
	{"10.20", "14.20", "11.60"},
}

// rates holds the table parsed into fractional decimal rates, built once at
// package init. Indexed by month-1, then device class.
var rates [48]map[assets.DeviceClass]decimal.Decimal

func init() {
	for i, row := range rateTable {
		rates[i] = map[assets.DeviceClass]decimal.Decimal{
			assets.ClassComputer: percentToRate(row.computers),
			assets.ClassTablet:   percentToRate(row.tablets),
			assets.ClassPhone:    percentToRate(row.phones),
		}
	}
}

// percentToRate converts a percentage string to a fractional rate exactly
// (Shift avoids division precision entirely).
func percentToRate(percent string) decimal.Decimal {
	return decimal.RequireFromString(percent).Shift(-2)
}
