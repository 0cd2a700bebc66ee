package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsync/internal/clients/gocardless"
	"finsync/internal/dto"
	"finsync/internal/models"
	"finsync/internal/repository"
	"finsync/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const RateLimitWarning = "API rate limit reached. Account names are temporary - full details will be available after rate limit resets."

var (
	ErrMissingConnectionID = errors.New("connection id is required")
	ErrMissingStartArgs    = errors.New("institution id and redirect url are required")
)

// SyncService pulls institutions, connections, accounts, balances and transactions from
// the aggregator into the store. Every public sync call builds its own aggregator client.
type SyncService struct {
	newAggregator AggregatorFactory
	institutions  InstitutionStore
	connections   ConnectionStore
	accounts      AccountStore
	transactions  TransactionStore
	detector      TransferMarker
	merchants     MerchantNormalizer
	fx            HomeConverter
	cfg           config.SyncConfig
	now           func() time.Time
	logger        *zap.Logger
}

// NewSyncService wires the orchestrator. fx may be nil; it is only consulted when
// cfg.ConvertFX is set.
func NewSyncService(
	newAggregator AggregatorFactory,
	institutions InstitutionStore,
	connections ConnectionStore,
	accounts AccountStore,
	transactions TransactionStore,
	detector TransferMarker,
	merchants MerchantNormalizer,
	fx HomeConverter,
	cfg config.SyncConfig,
	logger *zap.Logger,
) *SyncService {
	if merchants == nil {
		merchants = NewRuleNormalizer()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.HomeCurrency == "" {
		cfg.HomeCurrency = "CZK"
	}

	return &SyncService{
		newAggregator: newAggregator,
		institutions:  institutions,
		connections:   connections,
		accounts:      accounts,
		transactions:  transactions,
		detector:      detector,
		merchants:     merchants,
		fx:            fx,
		cfg:           cfg,
		now:           time.Now,
		logger:        logger,
	}
}

// Run syncs one connection, then runs transfer detection. Detection failures are logged only.
func (s *SyncService) Run(ctx context.Context, connectionID string) (*dto.SyncResult, error) {
	result, err := s.SyncConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	s.detectTransfers(ctx)
	return result, nil
}

// RunAll syncs every known connection, then runs transfer detection once.
func (s *SyncService) RunAll(ctx context.Context) ([]dto.ConnectionSyncResult, error) {
	results, err := s.SyncAll(ctx)
	if err != nil {
		return nil, err
	}
	s.detectTransfers(ctx)
	return results, nil
}

func (s *SyncService) detectTransfers(ctx context.Context) {
	if s.detector == nil {
		return
	}
	if _, err := s.detector.DetectAndMark(ctx); err != nil {
		s.logger.Warn("Transfer detection failed", zap.Error(err))
	}
}

// SyncConnection syncs a single connection with a fresh aggregator client.
func (s *SyncService) SyncConnection(ctx context.Context, connectionID string) (*dto.SyncResult, error) {
	if strings.TrimSpace(connectionID) == "" {
		return nil, ErrMissingConnectionID
	}

	client, err := s.newAggregator(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncConnection(ctx, client, connectionID)
}

// SyncAll syncs every stored connection sequentially with one client. A failing
// connection is reported in its entry and does not stop the others.
func (s *SyncService) SyncAll(ctx context.Context) ([]dto.ConnectionSyncResult, error) {
	ids, err := s.connections.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	client, err := s.newAggregator(ctx)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	s.logger.Info("Sync-all started", zap.String("run_id", runID), zap.Int("connections", len(ids)))

	results := make([]dto.ConnectionSyncResult, 0, len(ids))
	for _, id := range ids {
		data, err := s.syncConnection(ctx, client, id)
		if err != nil {
			s.logger.Warn("Connection sync failed",
				zap.String("run_id", runID),
				zap.String("connection_id", id),
				zap.Error(err),
			)
			results = append(results, dto.ConnectionSyncResult{ID: id, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, dto.ConnectionSyncResult{ID: id, OK: true, Data: data})
	}

	s.logger.Info("Sync-all finished", zap.String("run_id", runID), zap.Int("connections", len(ids)))
	return results, nil
}

type accountOutcome struct {
	accountID    string
	transactions int
	err          error
}

func (s *SyncService) syncConnection(ctx context.Context, client Aggregator, connectionID string) (*dto.SyncResult, error) {
	logger := s.logger.With(zap.String("connection_id", connectionID))

	// 1. Requisition details (the only fatal step)
	req, err := client.GetRequisition(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read requisition %s: %w", connectionID, err)
	}
	status := req.Status

	// 2-3. Institution (best effort) and connection
	s.saveInstitution(ctx, client, req.InstitutionID, logger)
	if err := s.connections.Upsert(ctx, &models.Connection{
		ID:            connectionID,
		InstitutionID: req.InstitutionID,
		Status:        models.ConnectionStatus(status),
	}); err != nil {
		logger.Warn("Failed to save connection", zap.Error(err))
	}

	// 4. Accounts; a failed listing counts as zero accounts
	accounts, err := client.ListAccounts(ctx, connectionID)
	if err != nil {
		logger.Warn("Failed to list accounts", zap.Error(err))
		accounts = nil
	}

	// 5. Degraded names
	warning := ""
	if gocardless.AllFallbackNames(accounts) {
		warning = RateLimitWarning
		logger.Warn("Rate limit detected, using fallback account names", zap.Int("accounts", len(accounts)))
	}

	// 6. Per-account fan-out, settle all
	since := s.now().AddDate(0, 0, -s.cfg.LookbackDays)
	outcomes := make([]accountOutcome, len(accounts))
	var g errgroup.Group
	for i, acc := range accounts {
		g.Go(func() error {
			outcomes[i] = s.syncAccount(ctx, client, req.InstitutionID, connectionID, acc, since, logger)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			logger.Warn("Account sync failed", zap.String("account_id", o.accountID), zap.Error(o.err))
		}
	}

	// 7. Persisted accounts of this connection
	persisted, err := s.accounts.ListByConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts of %s: %w", connectionID, err)
	}

	logger.Info("Connection synced",
		zap.String("status", status),
		zap.Int("accounts", len(accounts)),
		zap.Int("failed_accounts", failed),
		zap.Int("persisted_accounts", len(persisted)),
	)

	return &dto.SyncResult{
		ConnectionID: connectionID,
		Status:       status,
		Accounts:     persisted,
		Warning:      warning,
	}, nil
}

// saveInstitution stores enriched metadata when the lookup works, otherwise makes sure a
// placeholder row exists without touching known metadata.
func (s *SyncService) saveInstitution(ctx context.Context, client Aggregator, institutionID string, logger *zap.Logger) {
	inst, err := client.GetInstitution(ctx, institutionID)
	if err != nil {
		logger.Warn("Failed to fetch institution, using placeholder",
			zap.String("institution_id", institutionID),
			zap.Error(err),
		)
		if err := s.institutions.CreateIfMissing(ctx, institutionID); err != nil {
			logger.Warn("Failed to save placeholder institution", zap.Error(err))
		}
		return
	}

	if err := s.institutions.Upsert(ctx, institutionModel(inst, institutionID)); err != nil {
		logger.Warn("Failed to save institution", zap.String("institution_id", institutionID), zap.Error(err))
	}
}

func institutionModel(inst *gocardless.Institution, fallbackID string) *models.Institution {
	id := inst.ID
	if id == "" {
		id = fallbackID
	}
	name := inst.Name
	if name == "" {
		name = id
	}
	country := inst.CountryCode()
	if country == "" {
		country = repository.DefaultInstitutionCountry
	}
	return &models.Institution{
		ID:      id,
		Name:    name,
		Country: country,
		Logo:    stringPtr(inst.Logo),
		Website: stringPtr(inst.Website),
	}
}

// syncAccount handles one account: balance, account row, then transactions in order.
func (s *SyncService) syncAccount(
	ctx context.Context,
	client Aggregator,
	institutionID, connectionID string,
	acc gocardless.ExternalAccount,
	since time.Time,
	logger *zap.Logger,
) accountOutcome {
	out := accountOutcome{accountID: acc.ID}
	logger = logger.With(zap.String("account_id", acc.ID))

	accountCurrency := acc.Currency
	if accountCurrency == "" {
		accountCurrency = s.cfg.HomeCurrency
	}

	// a-b. Balance
	balanceCZK, asOf := s.readBalance(ctx, client, acc, accountCurrency, logger)

	// c. Account row
	if err := s.accounts.UpsertSynced(ctx, &models.SyncedAccount{
		ID:            acc.ID,
		Provider:      models.ProviderGoCardless,
		AccountName:   acc.Name,
		Currency:      accountCurrency,
		BalanceCZK:    balanceCZK,
		AsOf:          asOf,
		IBAN:          stringPtr(acc.IBAN),
		InstitutionID: institutionID,
		ConnectionID:  connectionID,
		Degraded:      acc.Degraded,
	}); err != nil {
		out.err = fmt.Errorf("failed to save account: %w", err)
		return out
	}

	// d. Transactions over the lookback window
	txs, err := client.FetchTransactions(ctx, acc.ID, since)
	if err != nil {
		out.err = fmt.Errorf("failed to fetch transactions: %w", err)
		return out
	}

	// e. Sequential upserts
	descriptions := make([]string, len(txs))
	for i, t := range txs {
		descriptions[i] = t.Description
	}
	merchants, err := s.merchants.Normalize(ctx, descriptions)
	if err != nil || len(merchants) != len(txs) {
		logger.Warn("Merchant normalisation failed", zap.Error(err))
		merchants = make([]string, len(txs))
	}

	for i, t := range txs {
		row := s.transactionModel(ctx, acc.ID, accountCurrency, t, merchants[i], logger)
		if err := s.transactions.Upsert(ctx, row); err != nil {
			out.err = fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
			return out
		}
		out.transactions++
	}

	logger.Debug("Account synced", zap.Int("transactions", out.transactions))
	return out
}

// readBalance returns the rounded home-currency balance, or nil when the balance is not in
// the home currency (and not convertible) or could not be read.
func (s *SyncService) readBalance(
	ctx context.Context,
	client Aggregator,
	acc gocardless.ExternalAccount,
	accountCurrency string,
	logger *zap.Logger,
) (*int64, time.Time) {
	asOf := s.now()

	balances, err := client.GetBalances(ctx, acc.ID)
	if err != nil {
		logger.Warn("Failed to fetch balances", zap.Error(err))
		return nil, asOf
	}

	best := gocardless.PickBestBalance(balances)
	if best == nil {
		return nil, asOf
	}
	if best.ReferenceTime != nil {
		asOf = *best.ReferenceTime
	}
	if !best.HasAmount {
		return nil, asOf
	}

	currency := best.Currency
	if currency == "" {
		currency = accountCurrency
	}

	amount, ok := s.toHome(ctx, best.Amount, currency, logger)
	if !ok {
		return nil, asOf
	}
	rounded := roundToInt(amount)
	return &rounded, asOf
}

func (s *SyncService) transactionModel(
	ctx context.Context,
	accountID, accountCurrency string,
	t gocardless.ExternalTransaction,
	merchant string,
	logger *zap.Logger,
) *models.Transaction {
	currency := t.Currency
	if currency == "" {
		currency = accountCurrency
	}

	amountCZK := t.Amount
	if s.cfg.ConvertFX {
		if converted, ok := s.toHome(ctx, t.Amount, currency, logger); ok {
			amountCZK = converted
		}
	}

	row := &models.Transaction{
		ID:             t.ID,
		Ts:             t.Ts,
		AmountCZK:      roundToInt(amountCZK),
		RawDescription: sanitizeUTF8(t.Description),
		MerchantNorm:   merchant,
		AccountID:      accountID,
		Currency:       currency,
		AmountOriginal: roundToInt(t.Amount),
		ExternalID:     stringPtr(t.ID),
	}
	if t.BalanceAfter != nil {
		after := roundToInt(*t.BalanceAfter)
		row.BalanceAfter = &after
	}
	return row
}

// toHome reports the amount in the home currency. Foreign amounts are only converted when
// ConvertFX is enabled and a rate is known.
func (s *SyncService) toHome(ctx context.Context, amount decimal.Decimal, currency string, logger *zap.Logger) (decimal.Decimal, bool) {
	if strings.EqualFold(currency, s.cfg.HomeCurrency) {
		return amount, true
	}
	if !s.cfg.ConvertFX || s.fx == nil {
		return decimal.Zero, false
	}

	converted, ok, err := s.fx.ToHome(ctx, amount, currency)
	if err != nil {
		logger.Warn("FX conversion failed", zap.String("currency", currency), zap.Error(err))
		return decimal.Zero, false
	}
	return converted, ok
}

// ListInstitutions fetches the aggregator's institution list and stores every entry.
func (s *SyncService) ListInstitutions(ctx context.Context) ([]gocardless.Institution, error) {
	client, err := s.newAggregator(ctx)
	if err != nil {
		return nil, err
	}

	institutions, err := client.ListInstitutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}

	for i := range institutions {
		if err := s.institutions.Upsert(ctx, institutionModel(&institutions[i], institutions[i].ID)); err != nil {
			s.logger.Warn("Failed to save institution", zap.String("institution_id", institutions[i].ID), zap.Error(err))
		}
	}
	return institutions, nil
}

func (s *SyncService) StoredInstitutions(ctx context.Context) ([]models.Institution, error) {
	return s.institutions.List(ctx)
}

// StartConnection creates a requisition and records it with status CR.
func (s *SyncService) StartConnection(ctx context.Context, institutionID, redirectURL string) (*gocardless.StartedConnection, error) {
	if institutionID == "" || redirectURL == "" {
		return nil, ErrMissingStartArgs
	}

	client, err := s.newAggregator(ctx)
	if err != nil {
		return nil, err
	}

	started, err := client.StartConnection(ctx, institutionID, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to start connection: %w", err)
	}

	if err := s.institutions.CreateIfMissing(ctx, institutionID); err != nil {
		return nil, fmt.Errorf("failed to save institution: %w", err)
	}
	if err := s.connections.Upsert(ctx, &models.Connection{
		ID:            started.ConnectionID,
		InstitutionID: institutionID,
		Status:        models.ConnectionStatusCreated,
	}); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info("Connection started",
		zap.String("connection_id", started.ConnectionID),
		zap.String("institution_id", institutionID),
	)
	return started, nil
}

// FinalizeConnection refreshes the stored status after the consent redirect.
func (s *SyncService) FinalizeConnection(ctx context.Context, connectionID string) (string, error) {
	if strings.TrimSpace(connectionID) == "" {
		return "", ErrMissingConnectionID
	}

	client, err := s.newAggregator(ctx)
	if err != nil {
		return "", err
	}

	req, err := client.GetRequisition(ctx, connectionID)
	if err != nil {
		return "", fmt.Errorf("failed to finalize connection: %w", err)
	}
	status := req.LinkStatus()

	if err := s.institutions.CreateIfMissing(ctx, req.InstitutionID); err != nil {
		s.logger.Warn("Failed to save institution", zap.Error(err))
	}
	if err := s.connections.Upsert(ctx, &models.Connection{
		ID:            connectionID,
		InstitutionID: req.InstitutionID,
		Status:        models.ConnectionStatus(status),
	}); err != nil {
		return "", fmt.Errorf("failed to save connection: %w", err)
	}
	return status, nil
}
