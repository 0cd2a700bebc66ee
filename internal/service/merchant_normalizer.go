package service

import (
	"context"
	"regexp"
	"strings"
)

// MerchantNormalizer turns raw bank descriptions into merchant names. The result slice has
// the same length as the input; an empty entry means "unknown".
type MerchantNormalizer interface {
	Normalize(ctx context.Context, descriptions []string) ([]string, error)
}

var (
	paymentPrefixes = []string{
		"PLATBA KARTOU",
		"NÁKUP KARTOU",
		"NAKUP KARTOU",
		"PLATBA",
		"CARD PAYMENT",
		"POS",
		"VISA",
		"MASTERCARD",
	}
	datePattern      = regexp.MustCompile(`\b\d{1,4}[./-]\d{1,2}[./-]\d{1,4}\b`)
	amountPattern    = regexp.MustCompile(`\b\d+[.,]\d{2}(\s*(CZK|EUR|USD|KČ))?`)
	referencePattern = regexp.MustCompile(`\b[A-Z]*\d{4,}[A-Z0-9]*\b`)
	cardMaskPattern  = regexp.MustCompile(`\b\d{4}\*+\d{0,4}\b|\*{2,}\d{2,4}`)
	separatorPattern = regexp.MustCompile(`[,;|]+`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// RuleNormalizer is the offline normaliser: it strips card/payment prefixes, masked card
// numbers, dates, amounts and reference numbers, then collapses whitespace.
type RuleNormalizer struct{}

func NewRuleNormalizer() *RuleNormalizer {
	return &RuleNormalizer{}
}

func (n *RuleNormalizer) Normalize(_ context.Context, descriptions []string) ([]string, error) {
	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		out[i] = normalizeMerchant(d)
	}
	return out, nil
}

func normalizeMerchant(description string) string {
	s := strings.ToUpper(strings.TrimSpace(sanitizeUTF8(description)))
	for _, prefix := range paymentPrefixes {
		if strings.HasPrefix(s, prefix+" ") || s == prefix {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	s = cardMaskPattern.ReplaceAllString(s, " ")
	s = datePattern.ReplaceAllString(s, " ")
	s = amountPattern.ReplaceAllString(s, " ")
	s = referencePattern.ReplaceAllString(s, " ")
	s = separatorPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " -:.")
}
