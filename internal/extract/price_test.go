package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePriceTruncatesFractionalPart(t *testing.T) {
	price, ok := ParsePrice("1,234.99")
	if !ok {
		t.Fatalf("expected price to parse")
	}
	if !price.Equal(decimal.NewFromInt(1234)) {
		t.Fatalf("expected 1234, got %s", price)
	}
}

func TestParsePriceStripsCurrencyAndSeparators(t *testing.T) {
	cases := map[string]int64{
		"₹45,000":    45000,
		"$ 1,299":    1299,
		"  799  ":    799,
		"€2.500":     2, // cut at the first dot, not locale-aware
		"1,23,456.0": 123456,
	}
	for text, want := range cases {
		price, ok := ParsePrice(text)
		if !ok {
			t.Fatalf("ParsePrice(%q) did not parse", text)
		}
		if !price.Equal(decimal.NewFromInt(want)) {
			t.Errorf("ParsePrice(%q) = %s, want %d", text, price, want)
		}
	}
}

func TestParsePriceRejectsNonNumeric(t *testing.T) {
	for _, text := range []string{"", "   ", "out of stock", "₹", "-500", ".99"} {
		if _, ok := ParsePrice(text); ok {
			t.Errorf("ParsePrice(%q) unexpectedly parsed", text)
		}
	}
}
