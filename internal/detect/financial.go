package detect

import "regexp"

var currencyRegex = regexp.MustCompile(`[₹$€]\s?\d+(?:[.,]\d+)*`)

// DetectFinancial scans for currency-symbol-prefixed amounts.
func DetectFinancial(text string) []Detection {
	return findSpans(currencyRegex, text, TypeFinancialData, SeverityHigh)
}
