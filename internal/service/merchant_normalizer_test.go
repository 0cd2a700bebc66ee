package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRuleNormalizer(t *testing.T) {
	cases := map[string]string{
		"PLATBA KARTOU ALBERT 0123":           "ALBERT",
		"Card payment Lidl, Praha 12.03.2025": "LIDL PRAHA",
		"NETFLIX.COM":                         "NETFLIX.COM",
		"  ":                                  "",
		"POS 4111****1111 BILLA":              "BILLA",
		"Rohlik.cz 1234,50 CZK":               "ROHLIK.CZ",
	}

	descriptions := make([]string, 0, len(cases))
	for d := range cases {
		descriptions = append(descriptions, d)
	}

	got, err := NewRuleNormalizer().Normalize(context.Background(), descriptions)
	require.NoError(t, err)
	require.Len(t, got, len(descriptions))
	for i, d := range descriptions {
		require.Equal(t, cases[d], got[i], d)
	}
}

func TestGigaChatNormalizerParsesReply(t *testing.T) {
	var prompt string
	n := newGigaChatNormalizer(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```json\n{\"0\": \"Albert\", \"1\": \"\"}\n```", nil
	}, zaptest.NewLogger(t))

	got, err := n.Normalize(context.Background(), []string{"PLATBA KARTOU ALBERT 0123", "POS BILLA"})
	require.NoError(t, err)
	require.Equal(t, []string{"ALBERT", "BILLA"}, got)
	require.Contains(t, prompt, "0: PLATBA KARTOU ALBERT 0123")
	require.Contains(t, prompt, "1: POS BILLA")
}

func TestGigaChatNormalizerFallsBackToRules(t *testing.T) {
	failing := newGigaChatNormalizer(func(context.Context, string) (string, error) {
		return "", errBoom
	}, zaptest.NewLogger(t))
	got, err := failing.Normalize(context.Background(), []string{"POS BILLA"})
	require.NoError(t, err)
	require.Equal(t, []string{"BILLA"}, got)

	garbled := newGigaChatNormalizer(func(context.Context, string) (string, error) {
		return "Не могу помочь", nil
	}, zaptest.NewLogger(t))
	got, err = garbled.Normalize(context.Background(), []string{"POS BILLA"})
	require.NoError(t, err)
	require.Equal(t, []string{"BILLA"}, got)
}
