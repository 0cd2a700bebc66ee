package service

import (
	"context"
	"errors"

	"finsync/internal/dto"

	"go.uber.org/zap"
)

// NightlyService chains the scheduled jobs: FX rates, Trading 212, then every bank connection.
type NightlyService struct {
	fx     *FXService
	t212   *T212Service
	sync   *SyncService
	logger *zap.Logger
}

func NewNightlyService(fx *FXService, t212 *T212Service, sync *SyncService, logger *zap.Logger) *NightlyService {
	return &NightlyService{
		fx:     fx,
		t212:   t212,
		sync:   sync,
		logger: logger,
	}
}

// Run executes every stage even when an earlier one fails; failures are reported in the result.
func (s *NightlyService) Run(ctx context.Context) *dto.NightlyResult {
	result := &dto.NightlyResult{OK: true}

	// 1. FX rates
	if _, err := s.fx.SyncCNB(ctx); err != nil {
		s.logger.Warn("Nightly FX sync failed", zap.Error(err))
		result.Errors = append(result.Errors, "fx: "+err.Error())
	} else {
		result.FxOK = true
	}

	// 2. Trading 212
	total, err := s.t212.Sync(ctx)
	switch {
	case errors.Is(err, ErrT212NotConfigured):
		s.logger.Info("Trading 212 not configured, skipping")
	case err != nil:
		s.logger.Warn("Nightly Trading 212 sync failed", zap.Error(err))
		result.Errors = append(result.Errors, "t212: "+err.Error())
	default:
		result.T212Total = &total
	}

	// 3. Bank connections
	results, err := s.sync.RunAll(ctx)
	if err != nil {
		s.logger.Warn("Nightly bank sync failed", zap.Error(err))
		result.Errors = append(result.Errors, "gc: "+err.Error())
	} else {
		result.GcOK = true
		for _, r := range results {
			if r.OK {
				result.Synced++
			}
		}
	}

	s.logger.Info("Nightly job finished",
		zap.Bool("fx_ok", result.FxOK),
		zap.Bool("gc_ok", result.GcOK),
		zap.Int("synced", result.Synced),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}
