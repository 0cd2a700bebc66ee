package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsync/internal/clients/cnb"
	"finsync/internal/dto"
	"finsync/internal/models"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const latestRatesKey = "fx:latest"

// RateFetcher is the source of daily fixings; *cnb.Client implements it.
type RateFetcher interface {
	Daily(ctx context.Context) (*cnb.DailyRates, error)
}

// FXService keeps the fx_rates side table and converts amounts into the home currency.
type FXService struct {
	rates        FxRateStore
	fetcher      RateFetcher
	homeCurrency string
	cache        *cache.Cache
	logger       *zap.Logger
}

func NewFXService(rates FxRateStore, fetcher RateFetcher, homeCurrency string, logger *zap.Logger) *FXService {
	return &FXService{
		rates:        rates,
		fetcher:      fetcher,
		homeCurrency: strings.ToUpper(homeCurrency),
		cache:        cache.New(time.Hour, 10*time.Minute),
		logger:       logger,
	}
}

// SyncCNB stores the latest CNB fixing.
func (s *FXService) SyncCNB(ctx context.Context) (*dto.FXSyncResult, error) {
	daily, err := s.fetcher.Daily(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CNB rates: %w", err)
	}

	rates := make([]models.FxRate, 0, len(daily.Rates))
	for _, r := range daily.Rates {
		rates = append(rates, models.FxRate{
			ID:       models.FxRateID(daily.Date, r.Code),
			Date:     daily.Date,
			Currency: r.Code,
			Amount:   r.Amount,
			Rate:     r.Rate,
		})
	}

	if err := s.rates.UpsertBatch(ctx, rates); err != nil {
		return nil, fmt.Errorf("failed to store CNB rates: %w", err)
	}
	s.cache.Delete(latestRatesKey)

	s.logger.Info("CNB rates synced", zap.String("date", daily.Date), zap.Int("count", len(rates)))
	return &dto.FXSyncResult{OK: true, Date: daily.Date, Count: len(rates)}, nil
}

// Latest returns the rates of the newest stored fixing.
func (s *FXService) Latest(ctx context.Context) ([]models.FxRate, error) {
	if cached, ok := s.cache.Get(latestRatesKey); ok {
		return cached.([]models.FxRate), nil
	}

	rates, err := s.rates.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rates: %w", err)
	}
	s.cache.SetDefault(latestRatesKey, rates)
	return rates, nil
}

// ToHome converts value / amount * rate. The home currency converts to itself; ok is false
// when no rate for currency is stored.
func (s *FXService) ToHome(ctx context.Context, value decimal.Decimal, currency string) (decimal.Decimal, bool, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == s.homeCurrency {
		return value, true, nil
	}

	rates, err := s.Latest(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, r := range rates {
		if !strings.EqualFold(r.Currency, currency) || r.Amount.IsZero() {
			continue
		}
		return value.Div(r.Amount).Mul(r.Rate), true, nil
	}
	return decimal.Zero, false, nil
}
