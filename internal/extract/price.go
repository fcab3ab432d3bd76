package extract

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Currency symbols seen across the supported site families.
const currencySymbols = "₹$€£¥"

// ParsePrice normalizes scraped price text into a fixed-point decimal.
//
// The text is stripped of thousands separators, whitespace, and currency
// symbols, then cut at the first decimal point: fractional cents printed on
// the page are discarded, not rounded. "1,234.99" parses to 1234 and
// "₹45,000" to 45000. Existing history was recorded this way, so the
// truncation is kept for compatibility.
func ParsePrice(text string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || strings.ContainsRune(currencySymbols, r) {
			return -1
		}
		return r
	}, text)

	whole, _, _ := strings.Cut(cleaned, ".")
	if whole == "" {
		return decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(whole)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, false
	}
	return price, true
}
