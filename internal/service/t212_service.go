package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finsync/internal/clients/trading212"
	"finsync/internal/models"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrT212NotConfigured = errors.New("trading 212 integration is not configured")

const (
	portfolioCacheKey = "t212:portfolio"
	cashCacheKey      = "t212:cash"
)

// T212Source is the trading platform API; *trading212.Client implements it.
type T212Source interface {
	Portfolio(ctx context.Context) ([]trading212.Position, error)
	Cash(ctx context.Context) (*trading212.Cash, error)
	History(ctx context.Context, q trading212.HistoryQuery) (json.RawMessage, error)
}

type T212Service struct {
	source T212Source
	store  T212Store
	cache  *cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

// NewT212Service accepts a nil source; every operation then returns ErrT212NotConfigured.
func NewT212Service(source T212Source, store T212Store, cacheTTL time.Duration, logger *zap.Logger) *T212Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Second
	}
	return &T212Service{
		source: source,
		store:  store,
		cache:  cache.New(cacheTTL, time.Minute),
		now:    time.Now,
		logger: logger,
	}
}

func (s *T212Service) Configured() bool {
	return s.source != nil
}

// Sync stores positions, cash and today's snapshot, and returns the snapshot total
// (sum of current price times quantity over stored positions, plus cash).
func (s *T212Service) Sync(ctx context.Context) (decimal.Decimal, error) {
	if !s.Configured() {
		return decimal.Zero, ErrT212NotConfigured
	}

	// 1. Positions (required)
	positions, err := s.source.Portfolio(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	rows := make([]models.T212Position, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, models.T212Position{
			ID:       p.Ticker,
			Ticker:   p.Ticker,
			Quantity: p.Quantity,
			AvgPrice: p.AvgPrice,
			CurPrice: p.CurPrice,
			PPL:      p.PPL,
			Currency: p.Currency,
		})
	}
	if err := s.store.UpsertPositions(ctx, rows); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store positions: %w", err)
	}

	// 2. Cash (optional)
	if cash, err := s.source.Cash(ctx); err != nil {
		s.logger.Warn("Failed to fetch Trading 212 cash, keeping stored value", zap.Error(err))
	} else if err := s.store.UpsertCash(ctx, &models.T212Cash{
		ID:       models.T212CashID,
		Amount:   cash.Amount,
		Currency: cash.Currency,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store cash: %w", err)
	}

	// 3. Snapshot from the stored state
	stored, err := s.store.ListPositions(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load positions: %w", err)
	}
	total := decimal.Zero
	for _, p := range stored {
		total = total.Add(p.Value())
	}

	currency := "EUR"
	storedCash, err := s.store.GetCash(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load cash: %w", err)
	}
	if storedCash != nil {
		total = total.Add(storedCash.Amount)
		currency = storedCash.Currency
	}

	snapshot := &models.T212Snapshot{
		ID:       s.now().UTC().Format("20060102"),
		Total:    total,
		Currency: currency,
	}
	if err := s.store.UpsertSnapshot(ctx, snapshot); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.cache.Flush()
	s.logger.Info("Trading 212 synced",
		zap.Int("positions", len(rows)),
		zap.String("total", total.String()),
		zap.String("snapshot_id", snapshot.ID),
	)
	return total, nil
}

// CachedPortfolio reads positions live, reusing a response younger than the cache TTL.
func (s *T212Service) CachedPortfolio(ctx context.Context) ([]trading212.Position, error) {
	if !s.Configured() {
		return nil, ErrT212NotConfigured
	}
	if cached, ok := s.cache.Get(portfolioCacheKey); ok {
		return cached.([]trading212.Position), nil
	}

	positions, err := s.source.Portfolio(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(portfolioCacheKey, positions)
	return positions, nil
}

func (s *T212Service) CachedCash(ctx context.Context) (*trading212.Cash, error) {
	if !s.Configured() {
		return nil, ErrT212NotConfigured
	}
	if cached, ok := s.cache.Get(cashCacheKey); ok {
		return cached.(*trading212.Cash), nil
	}

	cash, err := s.source.Cash(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(cashCacheKey, cash)
	return cash, nil
}

// History passes one page of transaction history through uncached.
func (s *T212Service) History(ctx context.Context, q trading212.HistoryQuery) (json.RawMessage, error) {
	if !s.Configured() {
		return nil, ErrT212NotConfigured
	}
	return s.source.History(ctx, q)
}

// StoredCash returns the last synced cash row, or nil before the first sync.
// It reads the database only, so it works without an API key.
func (s *T212Service) StoredCash(ctx context.Context) (*models.T212Cash, error) {
	return s.store.GetCash(ctx)
}

// Snapshots returns the daily totals oldest first.
func (s *T212Service) Snapshots(ctx context.Context) ([]models.T212Snapshot, error) {
	return s.store.ListSnapshots(ctx)
}
