package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"finsync/internal/clients/cnb"
	"finsync/internal/clients/gocardless"
	"finsync/internal/clients/trading212"
	"finsync/internal/models"

	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// fakeAggregator serves canned upstream data. Maps are read-only once a test starts syncing.
type fakeAggregator struct {
	requisitions   map[string]*gocardless.Requisition
	requisitionErr map[string]error
	institutions   map[string]*gocardless.Institution
	institutionErr error
	listing        []gocardless.Institution
	accounts       map[string][]gocardless.ExternalAccount
	accountsErr    map[string]error
	balances       map[string][]gocardless.Balance
	balancesErr    map[string]error
	transactions   map[string][]gocardless.ExternalTransaction
	transactionErr map[string]error
	started        *gocardless.StartedConnection

	txFetches        atomic.Int32
	requisitionReads atomic.Int32
	lastSince        atomic.Value
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{
		requisitions:   map[string]*gocardless.Requisition{},
		requisitionErr: map[string]error{},
		institutions:   map[string]*gocardless.Institution{},
		accounts:       map[string][]gocardless.ExternalAccount{},
		accountsErr:    map[string]error{},
		balances:       map[string][]gocardless.Balance{},
		balancesErr:    map[string]error{},
		transactions:   map[string][]gocardless.ExternalTransaction{},
		transactionErr: map[string]error{},
	}
}

func (f *fakeAggregator) ListInstitutions(context.Context) ([]gocardless.Institution, error) {
	return f.listing, nil
}

func (f *fakeAggregator) GetInstitution(_ context.Context, id string) (*gocardless.Institution, error) {
	if f.institutionErr != nil {
		return nil, f.institutionErr
	}
	inst, ok := f.institutions[id]
	if !ok {
		return nil, &gocardless.APIError{Op: "get institution", StatusCode: 404, Body: "not found"}
	}
	return inst, nil
}

func (f *fakeAggregator) StartConnection(_ context.Context, institutionID, redirectURL string) (*gocardless.StartedConnection, error) {
	if f.started == nil {
		return nil, errBoom
	}
	return f.started, nil
}

func (f *fakeAggregator) GetRequisition(_ context.Context, id string) (*gocardless.Requisition, error) {
	f.requisitionReads.Add(1)
	if err := f.requisitionErr[id]; err != nil {
		return nil, err
	}
	req, ok := f.requisitions[id]
	if !ok {
		return nil, &gocardless.APIError{Op: "read requisition", StatusCode: 404, Body: "not found"}
	}
	return req, nil
}

func (f *fakeAggregator) ListAccounts(_ context.Context, id string) ([]gocardless.ExternalAccount, error) {
	if err := f.accountsErr[id]; err != nil {
		return nil, err
	}
	return f.accounts[id], nil
}

func (f *fakeAggregator) GetBalances(_ context.Context, accountID string) ([]gocardless.Balance, error) {
	if err := f.balancesErr[accountID]; err != nil {
		return nil, err
	}
	return f.balances[accountID], nil
}

func (f *fakeAggregator) FetchTransactions(_ context.Context, accountID string, since time.Time) ([]gocardless.ExternalTransaction, error) {
	f.txFetches.Add(1)
	f.lastSince.Store(since)
	if err := f.transactionErr[accountID]; err != nil {
		return nil, err
	}
	return f.transactions[accountID], nil
}

// factory returns an AggregatorFactory serving f and counts how many clients were built.
func (f *fakeAggregator) factory(built *atomic.Int32) AggregatorFactory {
	return func(context.Context) (Aggregator, error) {
		if built != nil {
			built.Add(1)
		}
		return f, nil
	}
}

type memInstitutions struct {
	mu   sync.Mutex
	rows map[string]models.Institution
}

func newMemInstitutions() *memInstitutions {
	return &memInstitutions{rows: map[string]models.Institution{}}
}

func (m *memInstitutions) Upsert(_ context.Context, inst *models.Institution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[inst.ID] = *inst
	return nil
}

func (m *memInstitutions) CreateIfMissing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		m.rows[id] = models.Institution{ID: id, Name: id, Country: "CZ"}
	}
	return nil
}

func (m *memInstitutions) List(context.Context) ([]models.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Institution, 0, len(m.rows))
	for _, inst := range m.rows {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memConnections struct {
	mu    sync.Mutex
	rows  map[string]models.Connection
	order []string
	err   error
}

func newMemConnections() *memConnections {
	return &memConnections{rows: map[string]models.Connection{}}
}

func (m *memConnections) Upsert(_ context.Context, conn *models.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[conn.ID]; ok {
		existing.Status = conn.Status
		m.rows[conn.ID] = existing
		return nil
	}
	m.rows[conn.ID] = *conn
	m.order = append(m.order, conn.ID)
	return nil
}

func (m *memConnections) ListIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.order...), nil
}

type memAccounts struct {
	mu   sync.Mutex
	rows map[string]models.Account
	fail map[string]error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{rows: map[string]models.Account{}, fail: map[string]error{}}
}

func (m *memAccounts) UpsertSynced(_ context.Context, acc *models.SyncedAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[acc.ID]; err != nil {
		return err
	}

	row, exists := m.rows[acc.ID]
	if !exists {
		row = models.Account{ID: acc.ID, IsVisible: true}
	}
	row.Provider = acc.Provider
	if !exists || !acc.Degraded {
		row.AccountName = acc.AccountName
		row.Currency = acc.Currency
	}
	row.AsOf = acc.AsOf
	externalID := acc.ID
	row.ExternalID = &externalID
	if acc.IBAN != nil {
		row.IBAN = acc.IBAN
	}
	institutionID, connectionID := acc.InstitutionID, acc.ConnectionID
	row.InstitutionID = &institutionID
	row.ConnectionID = &connectionID
	if acc.BalanceCZK != nil {
		row.BalanceCZK = *acc.BalanceCZK
	}
	m.rows[acc.ID] = row
	return nil
}

func (m *memAccounts) ListByConnection(_ context.Context, connectionID string) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Account{}
	for _, acc := range m.rows {
		if acc.ConnectionID != nil && *acc.ConnectionID == connectionID {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].AccountName < out[j].AccountName
	})
	return out, nil
}

func (m *memAccounts) get(id string) (models.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.rows[id]
	return acc, ok
}

type memTransactions struct {
	mu          sync.Mutex
	rows        map[string]models.Transaction
	order       []string
	assignCalls [][]string
	listErr     error
}

func newMemTransactions() *memTransactions {
	return &memTransactions{rows: map[string]models.Transaction{}}
}

func (m *memTransactions) Upsert(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *tx
	if existing, ok := m.rows[tx.ID]; ok {
		row.CategoryID = existing.CategoryID
		if row.MerchantNorm == "" {
			row.MerchantNorm = existing.MerchantNorm
		}
		if row.BalanceAfter == nil {
			row.BalanceAfter = existing.BalanceAfter
		}
	} else {
		m.order = append(m.order, tx.ID)
	}
	m.rows[tx.ID] = row
	return nil
}

func (m *memTransactions) ListTransferCandidates(_ context.Context, since time.Time) ([]models.TransferCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.TransferCandidate{}
	for _, id := range m.order {
		tx := m.rows[id]
		if tx.Ts.Before(since) {
			continue
		}
		out = append(out, models.TransferCandidate{
			ID:         tx.ID,
			Ts:         tx.Ts,
			AmountCZK:  tx.AmountCZK,
			AccountID:  tx.AccountID,
			CategoryID: tx.CategoryID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ts.After(out[j].Ts) })
	return out, nil
}

func (m *memTransactions) AssignCategory(_ context.Context, ids []string, categoryID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignCalls = append(m.assignCalls, append([]string(nil), ids...))
	var n int64
	for _, id := range ids {
		tx, ok := m.rows[id]
		if !ok || tx.CategoryID != nil {
			continue
		}
		cat := categoryID
		tx.CategoryID = &cat
		m.rows[id] = tx
		n++
	}
	return n, nil
}

func (m *memTransactions) get(id string) (models.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[id]
	return tx, ok
}

func (m *memTransactions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memTransactions) forAccount(accountID string) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Transaction{}
	for _, id := range m.order {
		if tx := m.rows[id]; tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out
}

type memCategories struct {
	mu   sync.Mutex
	rows map[string]models.Category
	err  error
}

func newMemCategories() *memCategories {
	return &memCategories{rows: map[string]models.Category{}}
}

func (m *memCategories) EnsureByName(_ context.Context, id, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, cat := range m.rows {
		if cat.Name == name {
			return &cat, nil
		}
	}
	cat := models.Category{ID: id, Name: name}
	m.rows[id] = cat
	return &cat, nil
}

type memFxRates struct {
	mu   sync.Mutex
	rows map[string]models.FxRate
	hits int
}

func newMemFxRates() *memFxRates {
	return &memFxRates{rows: map[string]models.FxRate{}}
}

func (m *memFxRates) UpsertBatch(_ context.Context, rates []models.FxRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rates {
		m.rows[r.ID] = r
	}
	return nil
}

func (m *memFxRates) Latest(context.Context) ([]models.FxRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
	latest := ""
	for _, r := range m.rows {
		if r.Date > latest {
			latest = r.Date
		}
	}
	out := []models.FxRate{}
	for _, r := range m.rows {
		if r.Date == latest {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

type fakeRateFetcher struct {
	daily *cnb.DailyRates
	err   error
}

func (f *fakeRateFetcher) Daily(context.Context) (*cnb.DailyRates, error) {
	return f.daily, f.err
}

type memT212 struct {
	mu        sync.Mutex
	positions map[string]models.T212Position
	cash      *models.T212Cash
	snapshots map[string]models.T212Snapshot
}

func newMemT212() *memT212 {
	return &memT212{positions: map[string]models.T212Position{}, snapshots: map[string]models.T212Snapshot{}}
}

func (m *memT212) UpsertPositions(_ context.Context, positions []models.T212Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range positions {
		m.positions[p.ID] = p
	}
	return nil
}

func (m *memT212) ListPositions(context.Context) ([]models.T212Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.T212Position{}
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memT212) UpsertCash(_ context.Context, cash *models.T212Cash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cash
	m.cash = &c
	return nil
}

func (m *memT212) GetCash(context.Context) (*models.T212Cash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash, nil
}

func (m *memT212) UpsertSnapshot(_ context.Context, snap *models.T212Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.ID] = *snap
	return nil
}

func (m *memT212) ListSnapshots(context.Context) ([]models.T212Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.T212Snapshot{}
	for _, snap := range m.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeT212Source struct {
	positions []trading212.Position
	cash      *trading212.Cash
	cashErr   error
	history   json.RawMessage
	lastQuery trading212.HistoryQuery
	err       error
	calls     atomic.Int32
}

func (f *fakeT212Source) Portfolio(context.Context) ([]trading212.Position, error) {
	f.calls.Add(1)
	return f.positions, f.err
}

func (f *fakeT212Source) Cash(context.Context) (*trading212.Cash, error) {
	f.calls.Add(1)
	return f.cash, f.cashErr
}

func (f *fakeT212Source) History(_ context.Context, q trading212.HistoryQuery) (json.RawMessage, error) {
	f.calls.Add(1)
	f.lastQuery = q
	return f.history, f.err
}

type fakeMarker struct {
	calls atomic.Int32
	err   error
}

func (f *fakeMarker) DetectAndMark(context.Context) (int, error) {
	f.calls.Add(1)
	return 0, f.err
}

type fixedConverter map[string]decimal.Decimal

func (c fixedConverter) ToHome(_ context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, bool, error) {
	rate, ok := c[currency]
	if !ok {
		return decimal.Zero, false, nil
	}
	return amount.Mul(rate), true, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
