package price

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "₹"

// Parse normalizes scraped price text ("₹1,299" -> 1299) and reports
// whether the text held a number at all.
func Parse(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, currencySymbol, "")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	// a-price-whole renders as "1,299." with the fraction in a sibling span
	text = strings.TrimSuffix(text, ".")

	if text == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}

	return d.InexactFloat64(), true
}

// Ptr is Parse for optional fields: nil means the price is absent.
func Ptr(text string) *float64 {
	v, ok := Parse(text)
	if !ok {
		return nil
	}

	return &v
}
