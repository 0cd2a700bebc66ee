package service

import (
	"context"
	"testing"
	"time"

	"finsync/internal/clients/trading212"
	"finsync/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestT212Service(t *testing.T, source T212Source, store *memT212) *T212Service {
	s := NewT212Service(source, store, time.Minute, zaptest.NewLogger(t))
	s.now = func() time.Time { return time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC) }
	return s
}

func TestT212SyncStoresSnapshot(t *testing.T) {
	store := newMemT212()
	source := &fakeT212Source{
		positions: []trading212.Position{
			{Ticker: "AAPL_US_EQ", Quantity: dec("2"), CurPrice: dec("180.25"), Currency: "USD"},
			{Ticker: "VWCE", Quantity: dec("0.5"), CurPrice: dec("110"), Currency: "EUR"},
		},
		cash: &trading212.Cash{Amount: dec("40.10"), Currency: "EUR"},
	}

	total, err := newTestT212Service(t, source, store).Sync(context.Background())
	require.NoError(t, err)
	require.True(t, total.Equal(dec("455.6")), total.String())

	require.Len(t, store.positions, 2)
	require.Equal(t, models.T212CashID, store.cash.ID)
	snap, ok := store.snapshots["20250310"]
	require.True(t, ok)
	require.True(t, snap.Total.Equal(total))
	require.Equal(t, "EUR", snap.Currency)
}

func TestT212SyncKeepsStoredCashWhenCashFails(t *testing.T) {
	store := newMemT212()
	store.cash = &models.T212Cash{ID: models.T212CashID, Amount: dec("10"), Currency: "EUR"}
	source := &fakeT212Source{
		positions: []trading212.Position{{Ticker: "VWCE", Quantity: dec("1"), CurPrice: dec("100")}},
		cashErr:   errBoom,
	}

	total, err := newTestT212Service(t, source, store).Sync(context.Background())
	require.NoError(t, err)
	require.True(t, total.Equal(dec("110")))
}

func TestT212SyncFailsWithoutPortfolio(t *testing.T) {
	_, err := newTestT212Service(t, &fakeT212Source{err: errBoom}, newMemT212()).Sync(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestT212NotConfigured(t *testing.T) {
	s := newTestT212Service(t, nil, newMemT212())
	require.False(t, s.Configured())

	_, err := s.Sync(context.Background())
	require.ErrorIs(t, err, ErrT212NotConfigured)
	_, err = s.CachedPortfolio(context.Background())
	require.ErrorIs(t, err, ErrT212NotConfigured)
	_, err = s.CachedCash(context.Background())
	require.ErrorIs(t, err, ErrT212NotConfigured)
	_, err = s.History(context.Background(), trading212.HistoryQuery{})
	require.ErrorIs(t, err, ErrT212NotConfigured)
}

func TestT212StoredReadsWorkWithoutKey(t *testing.T) {
	store := newMemT212()
	s := newTestT212Service(t, nil, store)
	ctx := context.Background()

	cash, err := s.StoredCash(ctx)
	require.NoError(t, err)
	require.Nil(t, cash)
	snapshots, err := s.Snapshots(ctx)
	require.NoError(t, err)
	require.Empty(t, snapshots)

	store.cash = &models.T212Cash{ID: models.T212CashID, Amount: dec("7"), Currency: "EUR"}
	store.snapshots["20250310"] = models.T212Snapshot{ID: "20250310", Total: dec("2")}
	store.snapshots["20250301"] = models.T212Snapshot{ID: "20250301", Total: dec("1")}

	cash, err = s.StoredCash(ctx)
	require.NoError(t, err)
	require.True(t, cash.Amount.Equal(dec("7")))
	snapshots, err = s.Snapshots(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"20250301", "20250310"}, []string{snapshots[0].ID, snapshots[1].ID})
}

func TestT212HistoryIsNotCached(t *testing.T) {
	source := &fakeT212Source{history: []byte(`{"items":[]}`)}
	s := newTestT212Service(t, source, newMemT212())

	for i := 0; i < 2; i++ {
		page, err := s.History(context.Background(), trading212.HistoryQuery{Cursor: "c1"})
		require.NoError(t, err)
		require.JSONEq(t, `{"items":[]}`, string(page))
	}
	require.EqualValues(t, 2, source.calls.Load())
	require.Equal(t, "c1", source.lastQuery.Cursor)
}

func TestT212CachedReads(t *testing.T) {
	source := &fakeT212Source{
		positions: []trading212.Position{{Ticker: "VWCE", Quantity: dec("1"), CurPrice: dec("100")}},
		cash:      &trading212.Cash{Amount: dec("5"), Currency: "EUR"},
	}
	s := newTestT212Service(t, source, newMemT212())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		positions, err := s.CachedPortfolio(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 1)

		cash, err := s.CachedCash(ctx)
		require.NoError(t, err)
		require.True(t, cash.Amount.Equal(dec("5")))
	}
	require.EqualValues(t, 2, source.calls.Load())
}
