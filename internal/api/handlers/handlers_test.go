package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"finsync/internal/clients/gocardless"
	"finsync/internal/clients/trading212"
	"finsync/internal/dto"
	"finsync/internal/models"
	"finsync/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

type stubSyncer struct {
	result   *dto.SyncResult
	results  []dto.ConnectionSyncResult
	err      error
	lastID   string
	allCalls int
}

func (s *stubSyncer) Run(_ context.Context, id string) (*dto.SyncResult, error) {
	s.lastID = id
	return s.result, s.err
}

func (s *stubSyncer) RunAll(context.Context) ([]dto.ConnectionSyncResult, error) {
	s.allCalls++
	return s.results, s.err
}

type stubDetector struct {
	marked int
	err    error
}

func (s *stubDetector) DetectAndMark(context.Context) (int, error) {
	return s.marked, s.err
}

type stubConnections struct {
	institutions []gocardless.Institution
	stored       []models.Institution
	finalized    []string
	err          error
}

func (s *stubConnections) ListInstitutions(context.Context) ([]gocardless.Institution, error) {
	return s.institutions, s.err
}

func (s *stubConnections) StoredInstitutions(context.Context) ([]models.Institution, error) {
	return s.stored, s.err
}

func (s *stubConnections) StartConnection(_ context.Context, institutionID, redirectURL string) (*gocardless.StartedConnection, error) {
	if institutionID == "" || redirectURL == "" {
		return nil, service.ErrMissingStartArgs
	}
	if s.err != nil {
		return nil, s.err
	}
	return &gocardless.StartedConnection{Redirect: "https://ob.example/start/" + institutionID, ConnectionID: "req-new"}, nil
}

func (s *stubConnections) FinalizeConnection(_ context.Context, id string) (string, error) {
	s.finalized = append(s.finalized, id)
	return "LN", s.err
}

type stubFX struct {
	rates []models.FxRate
	err   error
}

func (s *stubFX) SyncCNB(context.Context) (*dto.FXSyncResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.FXSyncResult{OK: true, Date: "20250114", Count: len(s.rates)}, nil
}

func (s *stubFX) Latest(context.Context) ([]models.FxRate, error) {
	return s.rates, s.err
}

type stubT212 struct {
	total     decimal.Decimal
	positions []trading212.Position
	history   json.RawMessage
	lastQuery trading212.HistoryQuery
	cash      *models.T212Cash
	snapshots []models.T212Snapshot
	err       error
}

func (s *stubT212) Sync(context.Context) (decimal.Decimal, error) {
	return s.total, s.err
}

func (s *stubT212) CachedPortfolio(context.Context) ([]trading212.Position, error) {
	return s.positions, s.err
}

func (s *stubT212) CachedCash(context.Context) (*trading212.Cash, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &trading212.Cash{Amount: decimal.NewFromInt(12), Currency: "EUR"}, nil
}

func (s *stubT212) History(_ context.Context, q trading212.HistoryQuery) (json.RawMessage, error) {
	s.lastQuery = q
	return s.history, s.err
}

func (s *stubT212) StoredCash(context.Context) (*models.T212Cash, error) {
	return s.cash, s.err
}

func (s *stubT212) Snapshots(context.Context) ([]models.T212Snapshot, error) {
	return s.snapshots, s.err
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, resp.Header.Get("Location")
}

func newSyncApp(syncer *stubSyncer, detector *stubDetector) *fiber.App {
	h := NewSyncHandler(syncer, detector, zap.NewNop())
	app := fiber.New()
	app.Post("/sync/gc", h.Sync)
	app.Get("/sync/gc", h.CronSync)
	app.Post("/transfers/detect", h.DetectTransfers)
	return app
}

func TestSyncSingleConnection(t *testing.T) {
	syncer := &stubSyncer{result: &dto.SyncResult{ConnectionID: "req-1", Status: "LN", Accounts: []models.Account{}}}
	app := newSyncApp(syncer, &stubDetector{})

	status, body, _ := do(t, app, "POST", "/sync/gc", `{"requisitionId":"req-1"}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "req-1", body["connectionId"])
	require.Equal(t, "req-1", syncer.lastID)
}

func TestSyncRequiresRequisition(t *testing.T) {
	app := newSyncApp(&stubSyncer{}, &stubDetector{})

	status, body, _ := do(t, app, "POST", "/sync/gc", `{}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "Missing requisitionId", body["error"])

	status, _, _ = do(t, app, "POST", "/sync/gc", "")
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestSyncAllCountsSuccesses(t *testing.T) {
	syncer := &stubSyncer{results: []dto.ConnectionSyncResult{
		{ID: "req-1", OK: true, Data: &dto.SyncResult{ConnectionID: "req-1"}},
		{ID: "req-2", OK: false, Error: "failed to read requisition req-2"},
	}}
	app := newSyncApp(syncer, &stubDetector{})

	status, body, _ := do(t, app, "POST", "/sync/gc", `{"syncAll":true}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["ok"])
	require.EqualValues(t, 1, body["synced"])
	require.Len(t, body["results"], 2)
}

func TestSyncFailureIsInternalError(t *testing.T) {
	app := newSyncApp(&stubSyncer{err: errBoom}, &stubDetector{})

	status, body, _ := do(t, app, "POST", "/sync/gc", `{"requisitionId":"req-1"}`)
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "Internal Server Error", body["error"])
}

func TestCronSyncOnlyRunsWithFlag(t *testing.T) {
	syncer := &stubSyncer{results: []dto.ConnectionSyncResult{{ID: "req-1", OK: true}, {ID: "req-2"}}}
	app := newSyncApp(syncer, &stubDetector{})

	status, body, _ := do(t, app, "GET", "/sync/gc", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["ok"])
	require.Zero(t, syncer.allCalls)

	status, body, _ = do(t, app, "GET", "/sync/gc?cron=true", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 2, body["synced"])
	require.Equal(t, 1, syncer.allCalls)
}

func TestDetectTransfers(t *testing.T) {
	status, body, _ := do(t, newSyncApp(&stubSyncer{}, &stubDetector{marked: 4}), "POST", "/transfers/detect", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 4, body["marked"])

	status, _, _ = do(t, newSyncApp(&stubSyncer{}, &stubDetector{err: errBoom}), "POST", "/transfers/detect", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
}

func newConnectApp(connections *stubConnections) *fiber.App {
	h := NewConnectHandler(connections, zap.NewNop())
	app := fiber.New()
	app.Get("/institutions", h.ListInstitutions)
	app.Get("/institutions/db", h.StoredInstitutions)
	app.Post("/connect/gc/start", h.Start)
	app.Get("/connect/gc/callback", h.Callback)
	return app
}

func TestListInstitutionsUsesFirstCountry(t *testing.T) {
	app := newConnectApp(&stubConnections{institutions: []gocardless.Institution{
		{ID: "FIO_FIOBCZPP", Name: "Fio banka", Countries: []string{"CZ", "SK"}},
	}})

	req := httptest.NewRequest("GET", "/institutions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []dto.InstitutionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, []dto.InstitutionResponse{{ID: "FIO_FIOBCZPP", Name: "Fio banka", Country: "CZ"}}, got)
}

func TestStartConnection(t *testing.T) {
	app := newConnectApp(&stubConnections{})

	status, body, _ := do(t, app, "POST", "/connect/gc/start", `{"institutionId":"KB_KOMBCZPP","redirectUrl":"https://app/cb"}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "req-new", body["requisitionId"])
	require.Equal(t, "https://ob.example/start/KB_KOMBCZPP", body["redirect"])

	status, body, _ = do(t, app, "POST", "/connect/gc/start", `{"institutionId":"KB_KOMBCZPP"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "Missing institutionId or redirectUrl", body["error"])
}

func TestCallbackFinalizesAndRedirects(t *testing.T) {
	connections := &stubConnections{}
	app := newConnectApp(connections)

	status, _, location := do(t, app, "GET", "/connect/gc/callback?ref=req-9", "")
	require.Equal(t, fiber.StatusFound, status)
	require.Equal(t, "/settings?requisition_id=req-9&tab=bank", location)
	require.Equal(t, []string{"req-9"}, connections.finalized)

	status, _, _ = do(t, app, "GET", "/connect/gc/callback", "")
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestCallbackFailure(t *testing.T) {
	status, body, _ := do(t, newConnectApp(&stubConnections{err: errBoom}), "GET", "/connect/gc/callback?requisition_id=req-9", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "Internal Server Error", body["error"])
}

func TestFXLatest(t *testing.T) {
	newApp := func(fx *stubFX) *fiber.App {
		h := NewFXHandler(fx, zap.NewNop())
		app := fiber.New()
		app.Get("/fx/latest", h.Latest)
		app.Post("/fx/cnb/sync", h.SyncCNB)
		return app
	}

	status, body, _ := do(t, newApp(&stubFX{}), "GET", "/fx/latest", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Nil(t, body["date"])

	fx := &stubFX{rates: []models.FxRate{{ID: "20250114-EUR", Date: "20250114", Currency: "EUR"}}}
	status, body, _ = do(t, newApp(fx), "GET", "/fx/latest", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "20250114", body["date"])
	require.Len(t, body["rates"], 1)

	status, body, _ = do(t, newApp(fx), "POST", "/fx/cnb/sync", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 1, body["count"])
}

func newT212App(t212 *stubT212) *fiber.App {
	h := NewT212Handler(t212, zap.NewNop())
	app := fiber.New()
	app.Post("/t212/sync", h.Sync)
	app.Get("/t212/portfolio", h.Portfolio)
	app.Get("/t212/cash", h.Cash)
	app.Get("/t212/transactions", h.Transactions)
	app.Get("/t212/db/cash", h.StoredCash)
	app.Get("/t212/db/snapshots", h.Snapshots)
	return app
}

func doRaw(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestT212Sync(t *testing.T) {
	status, body, _ := do(t, newT212App(&stubT212{total: decimal.RequireFromString("455.6")}), "POST", "/t212/sync", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "455.6", body["total"])
}

func TestT212Errors(t *testing.T) {
	status, body, _ := do(t, newT212App(&stubT212{err: service.ErrT212NotConfigured}), "GET", "/t212/portfolio", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "Missing T212_API_KEY", body["error"])

	upstream := &trading212.APIError{Path: "/api/v0/equity/cash", StatusCode: 401, Body: "bad key"}
	status, body, _ = do(t, newT212App(&stubT212{err: upstream}), "GET", "/t212/cash", "")
	require.Equal(t, fiber.StatusBadGateway, status)
	require.Equal(t, "T212 error 401", body["error"])
	require.Equal(t, "bad key", body["details"])
}

func TestT212TransactionsPassesPageThrough(t *testing.T) {
	page := `{"items":[{"type":"DEPOSIT","amount":100}],"nextPagePath":"/api/v0/history/transactions?cursor=abc"}`
	stub := &stubT212{history: json.RawMessage(page)}

	status, body := doRaw(t, newT212App(stub), "/t212/transactions?cursor=abc&time=2025-03-01T00:00:00Z")
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, page, body)
	require.Equal(t, trading212.HistoryQuery{
		Limit:  trading212.DefaultHistoryLimit,
		Time:   "2025-03-01T00:00:00Z",
		Cursor: "abc",
	}, stub.lastQuery)

	_, _ = doRaw(t, newT212App(stub), "/t212/transactions?limit=20")
	require.Equal(t, trading212.HistoryQuery{Limit: 20}, stub.lastQuery)
}

func TestT212TransactionsUpstreamError(t *testing.T) {
	upstream := &trading212.APIError{Path: "/api/v0/history/transactions", StatusCode: 429, Body: "slow down"}
	status, body, _ := do(t, newT212App(&stubT212{err: upstream}), "GET", "/t212/transactions", "")
	require.Equal(t, fiber.StatusBadGateway, status)
	require.Equal(t, "T212 error 429", body["error"])
}

func TestT212StoredCash(t *testing.T) {
	status, body := doRaw(t, newT212App(&stubT212{}), "/t212/db/cash")
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `{}`, body)

	stored := &models.T212Cash{ID: models.T212CashID, Amount: decimal.RequireFromString("40.1"), Currency: "EUR"}
	status, decoded, _ := do(t, newT212App(&stubT212{cash: stored}), "GET", "/t212/db/cash", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, models.T212CashID, decoded["id"])
	require.Equal(t, "40.1", decoded["amount"])
}

func TestT212Snapshots(t *testing.T) {
	stub := &stubT212{snapshots: []models.T212Snapshot{
		{ID: "20250309", Total: decimal.RequireFromString("450"), Currency: "EUR"},
		{ID: "20250310", Total: decimal.RequireFromString("455.6"), Currency: "EUR"},
	}}

	status, body := doRaw(t, newT212App(stub), "/t212/db/snapshots")
	require.Equal(t, fiber.StatusOK, status)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 2)
	require.Equal(t, "20250309", got[0]["id"])
	require.Equal(t, "455.6", got[1]["total"])

	status, body = doRaw(t, newT212App(&stubT212{snapshots: []models.T212Snapshot{}}), "/t212/db/snapshots")
	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `[]`, body)
}

type stubNightly struct{ calls int }

func (s *stubNightly) Run(context.Context) *dto.NightlyResult {
	s.calls++
	return &dto.NightlyResult{OK: true, FxOK: true, GcOK: true, Synced: 2}
}

func TestNightly(t *testing.T) {
	nightly := &stubNightly{}
	h := NewCronHandler(nightly, zap.NewNop())
	app := fiber.New()
	app.Get("/cron/nightly", h.Nightly)

	status, body, _ := do(t, app, "GET", "/cron/nightly", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["fxOk"])
	require.EqualValues(t, 2, body["synced"])
	require.NotContains(t, body, "t212Total")
	require.Equal(t, 1, nightly.calls)
}
