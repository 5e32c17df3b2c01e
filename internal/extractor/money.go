package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	moneyPattern = regexp.MustCompile(`\$?\s*(\d+\.\d{2})`)
	nonNumeric   = regexp.MustCompile(`[^\d.]`)
)

// LastMoney returns the last money-looking amount in text. Receipts print the
// amount at the end of a line; leading tokens are usually codes or counts.
func LastMoney(text string) (decimal.Decimal, bool) {
	matches := moneyPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(matches[len(matches)-1][1])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseNumber strips everything except digits and dots and parses the rest.
// Empty or malformed leftovers (e.g. "1.2.3") yield no value.
func ParseNumber(text string) (decimal.Decimal, bool) {
	cleaned := nonNumeric.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
