package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// sanitizeUTF8 removes invalid UTF-8 sequences from string
// This prevents PostgreSQL encoding errors when saving bank-supplied text
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// roundToInt rounds half away from zero, the rounding used for every stored amount.
func roundToInt(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
