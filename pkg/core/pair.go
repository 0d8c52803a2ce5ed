package core

import (
	"fmt"
	"strings"
)

// SplitPair splits a slash-separated currency pair into base and quote
func SplitPair(pair string) (base, quote string) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 {
		return pair, ""
	}
	return parts[0], parts[1]
}

// ValidatePair checks a currency pair follows the BASE/QUOTE form with
// three-letter ISO codes
func ValidatePair(pair string) error {
	base, quote := SplitPair(pair)
	if len(base) != 3 || len(quote) != 3 {
		return fmt.Errorf("%w: %s", ErrInvalidPair, pair)
	}
	return nil
}
