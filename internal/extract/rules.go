package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// keyShape matches uppercase alphanumeric part keys with optional internal
// - or / separators. No leading or trailing separator; length is checked
// separately against the profile minimum.
var keyShape = regexp.MustCompile(`^[A-Z0-9]+(?:[-/][A-Z0-9]+)*$`)

// currencyPrefixes are stripped from amount tokens before parsing.
var currencyPrefixes = []string{"₹", "Rs.", "Rs", "INR", "$", "€", "£"}

// isNoise reports whether the line contains any stoplisted term,
// case-insensitively. Such lines are summary/boilerplate rows.
func isNoise(lineText string, stoplist []string) bool {
	lower := strings.ToLower(lineText)
	for _, term := range stoplist {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// matchKey reports whether a token has the key shape at the given minimum
// length.
func matchKey(token string, minLen int) bool {
	if len(token) < minLen {
		return false
	}
	return keyShape.MatchString(token)
}

// findKey scans the first window tokens for the first key-shaped token and
// returns its index, or -1.
func findKey(tokens []string, window, minLen int) int {
	if window <= 0 || window > len(tokens) {
		window = len(tokens)
	}
	for i := 0; i < window; i++ {
		if matchKey(tokens[i], minLen) {
			return i
		}
	}
	return -1
}

// amountPattern builds the currency-like token shape for a fixed fraction
// width: digit groups, optionally comma-separated, with exactly n
// fractional digits.
func amountPattern(fractionDigits int) *regexp.Regexp {
	return regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{` + itoa(fractionDigits) + `}$`)
}

func itoa(n int) string {
	if n < 0 || n > 9 {
		return "2"
	}
	return string(rune('0' + n))
}

// stripCurrency removes a leading currency marker from a token, if any.
func stripCurrency(token string) string {
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(token, p) {
			return strings.TrimSpace(strings.TrimPrefix(token, p))
		}
	}
	return token
}

// parseAmount parses a token of the configured shape into a decimal,
// stripping currency markers and thousands separators. ok is false when the
// token does not have the amount shape.
func parseAmount(token string, shape *regexp.Regexp) (decimal.Decimal, bool) {
	t := stripCurrency(token)
	if !shape.MatchString(t) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(t, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// trimDescription trims stray punctuation and separators from the edges of
// a description span.
func trimDescription(tokens []string) string {
	joined := strings.Join(tokens, " ")
	return strings.Trim(joined, " .,:;-/|")
}
