package service

import (
	"context"
	"testing"

	"finsync/internal/clients/cnb"
	"finsync/internal/clients/trading212"
	"finsync/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNightlyRunsEveryStage(t *testing.T) {
	f := newSyncFixture()
	require.NoError(t, f.connections.Upsert(context.Background(), &models.Connection{ID: "req-1", InstitutionID: "FIO_FIOBCZPP", Status: "CR"}))

	logger := zaptest.NewLogger(t)
	fx := NewFXService(newMemFxRates(), &fakeRateFetcher{err: errBoom}, "CZK", logger)
	t212 := newTestT212Service(t, &fakeT212Source{
		positions: []trading212.Position{{Ticker: "VWCE", Quantity: dec("2"), CurPrice: dec("100")}},
		cash:      &trading212.Cash{Amount: dec("1"), Currency: "EUR"},
	}, newMemT212())

	result := NewNightlyService(fx, t212, f.service(t), logger).Run(context.Background())

	require.True(t, result.OK)
	require.False(t, result.FxOK)
	require.NotNil(t, result.T212Total)
	require.True(t, result.T212Total.Equal(dec("201")))
	require.True(t, result.GcOK)
	require.Equal(t, 1, result.Synced)
	require.Len(t, result.Errors, 1)
	require.EqualValues(t, 1, f.marker.calls.Load())
}

func TestNightlySkipsUnconfiguredT212(t *testing.T) {
	f := newSyncFixture()
	logger := zaptest.NewLogger(t)
	fx := NewFXService(newMemFxRates(), &fakeRateFetcher{daily: &cnb.DailyRates{Date: "20250310"}}, "CZK", logger)

	result := NewNightlyService(fx, newTestT212Service(t, nil, newMemT212()), f.service(t), logger).Run(context.Background())

	require.True(t, result.FxOK)
	require.Nil(t, result.T212Total)
	require.True(t, result.GcOK)
	require.Zero(t, result.Synced)
	require.Empty(t, result.Errors)
}
