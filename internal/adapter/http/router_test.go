package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/adapter/http/handler"
	"github.com/mymoolah/walletcore/internal/adapter/http/middleware"
	"github.com/mymoolah/walletcore/internal/adapter/rail"
	"github.com/mymoolah/walletcore/internal/adapter/repository/memory"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
	"github.com/mymoolah/walletcore/internal/usecase/mocks"
)

// newTestServer wires the full API over the memory store with header
// identities.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	idGen := mocks.NewMockIDGenerator()
	chart := usecase.DefaultChartOfAccounts()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	accounts := memory.NewAccountRepository(store)
	journal := memory.NewJournalRepository(store)
	wallets := memory.NewWalletRepository(store)
	walletTxs := memory.NewWalletTransactionRepository(store)
	movements := memory.NewMovementRepository(store)
	taxes := memory.NewTaxRepository(store)
	outbox := memory.NewOutboxRepository(store)
	audit := memory.NewAuditRepository(store)
	fees := memory.NewFeeConfigRepository(store)
	tiers := memory.NewTierRepository(store)

	ledger := usecase.NewLedgerUseCase(txm, accounts, journal, outbox, audit, idGen, m)
	balance := usecase.NewBalanceService(wallets, walletTxs, idGen, m)
	walletUC := usecase.NewWalletUseCase(txm, wallets, walletTxs, audit, idGen, balance, ledger, chart)
	feeCalc := usecase.NewFeeCalculator(fees, tiers, m)
	feeAdmin := usecase.NewFeeAdminUseCase(txm, fees, tiers, idGen)

	deps := &usecase.MovementDeps{
		TxManager: txm,
		Movements: movements,
		Wallets:   wallets,
		Taxes:     taxes,
		Outbox:    outbox,
		Audit:     audit,
		IDGen:     idGen,
		Ledger:    ledger,
		Balance:   balance,
		Fees:      feeCalc,
		Chart:     chart,
	}
	engine := usecase.NewSettlementEngine(deps)
	registry := rail.NewRegistry()

	require.NoError(t, ledger.EnsureChart(context.Background(), chart))

	router := NewRouter(RouterConfig{
		LedgerHandler:    handler.NewLedgerHandler(ledger, usecase.NewReconciliationUseCase(ledger, wallets)),
		WalletHandler:    handler.NewWalletHandler(walletUC),
		FeeHandler:       handler.NewFeeHandler(feeCalc, feeAdmin),
		PaymentHandler:   handler.NewPaymentHandler(usecase.NewVoucherUseCase(deps, engine, nil, 0), usecase.NewPayShapUseCase(deps, 0), usecase.NewQRPaymentUseCase(deps, engine, registry, 0), usecase.NewDepositUseCase(deps)),
		MovementHandler:  handler.NewMovementHandler(usecase.NewMovementUseCase(movements, taxes, engine)),
		CallbackHandler:  handler.NewCallbackHandler(rail.NewVerifier(map[domain.Rail]string{domain.RailZapperQR: "zap"}, m), usecase.NewCallbackUseCase(rail.NewCallbackParser(), engine, m)),
		AdminHandler:     handler.NewAdminHandler(usecase.NewSweepUseCase(movements, engine, nil, m, 0, 0), nil),
		HealthHandler:    handler.NewHealthHandler(nil),
		Logger:           zerolog.Nop(),
		Metrics:          m,
		Gatherer:         reg,
		IdempotencyStore: memory.NewIdempotencyStore(),
		CallbackLimiter:  middleware.NewRateLimiter(100, 100, "callbacks", m),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type caller struct {
	id   string
	role string
}

var (
	alice = caller{id: "alice", role: "user"}
	ops   = caller{id: "ops", role: "operator"}
	root  = caller{id: "root", role: "admin"}
)

func call(t *testing.T, srv *httptest.Server, who caller, method, path, body string, headers ...string) (int, http.Header, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if who.id != "" {
		req.Header.Set(middleware.UserIDHeader, who.id)
		req.Header.Set(middleware.UserRoleHeader, who.role)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, resp.Header, out
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, _, body := call(t, srv, caller{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _, _ = call(t, srv, caller{}, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, status)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "walletcore_http_requests_total")
}

func TestRouter_RequiresIdentityAndRole(t *testing.T) {
	srv := newTestServer(t)

	status, _, _ := call(t, srv, caller{}, http.MethodGet, "/api/v1/wallets", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = call(t, srv, alice, http.MethodGet, "/api/v1/ledger/trial-balance", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = call(t, srv, ops, http.MethodPost, "/api/v1/admin/sweeps/expire", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _, body := call(t, srv, root, http.MethodPost, "/api/v1/admin/sweeps/expire", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "expire", body["sweep"])
}

func TestRouter_VoucherFlowKeepsLedgerConsistent(t *testing.T) {
	srv := newTestServer(t)

	status, _, _ := call(t, srv, root, http.MethodPost, "/api/v1/admin/fees", `{
		"supplier_code":"MYMOOLAH","service_type":"voucher_issue","tier_level":"bronze",
		"supplier_cost":{"type":"fixed","fixed_minor":0},
		"platform_fee":{"type":"fixed","fixed_minor":250},
		"effective_from":"2020-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _, wallet := call(t, srv, alice, http.MethodPost, "/api/v1/wallets", `{"kind":"user","name":"Alice"}`)
	require.Equal(t, http.StatusCreated, status)
	walletID := wallet["id"].(string)
	assert.Equal(t, "alice", wallet["owner_id"])

	status, _, _ = call(t, srv, alice, http.MethodPost, "/api/v1/wallets/"+walletID+"/fund", `{"amount":"500","reference":"FUND-1"}`)
	require.Equal(t, http.StatusForbidden, status)
	status, _, _ = call(t, srv, ops, http.MethodPost, "/api/v1/wallets/"+walletID+"/fund", `{"amount":"500","reference":"FUND-1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _, quote := call(t, srv, alice, http.MethodPost, "/api/v1/fees/quote", `{"supplier_code":"MYMOOLAH","service_type":"voucher_issue","amount":"100"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(250), int64(quote["total_fee_minor"].(float64)))

	issue := `{"reference":"VCH-TEST-1","wallet_id":"` + walletID + `","amount":"100"}`
	status, _, first := call(t, srv, alice, http.MethodPost, "/api/v1/vouchers", issue, middleware.IdempotencyKeyHeader, "issue-1")
	require.Equal(t, http.StatusCreated, status, first)
	assert.Equal(t, "100.00", first["amount"])
	assert.Equal(t, "2.50", first["fee"])
	assert.NotEmpty(t, first["voucher_code"])

	status, headers, replay := call(t, srv, alice, http.MethodPost, "/api/v1/vouchers", issue, middleware.IdempotencyKeyHeader, "issue-1")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "true", headers.Get(middleware.IdempotencyReplayHeader))
	assert.Equal(t, first["voucher_code"], replay["voucher_code"])

	status, _, w := call(t, srv, alice, http.MethodGet, "/api/v1/wallets/"+walletID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "397.50", w["balance"])

	status, _, _ = call(t, srv, caller{id: "mallory", role: "user"}, http.MethodGet, "/api/v1/movements/VCH-TEST-1/status", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _, mv := call(t, srv, alice, http.MethodGet, "/api/v1/movements/VCH-TEST-1/status", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "VCH-TEST-1", mv["reference"])

	status, _, consistency := call(t, srv, ops, http.MethodGet, "/api/v1/ledger/consistency", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, consistency["consistent"])

	status, _, recon := call(t, srv, ops, http.MethodGet, "/api/v1/ledger/reconciliation", "")
	require.Equal(t, http.StatusOK, status, recon)
}

func TestRouter_CallbackRequiresSignature(t *testing.T) {
	srv := newTestServer(t)

	body := `{"reference":"QR-UNKNOWN","status":"PAID"}`
	status, _, _ := call(t, srv, caller{}, http.MethodPost, "/callbacks/zapper_qr", body, rail.SignatureHeader, "bad")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = call(t, srv, caller{}, http.MethodPost, "/callbacks/zapper_qr", body, rail.SignatureHeader, rail.Sign([]byte("zap"), []byte(body)))
	assert.Equal(t, http.StatusNotFound, status)

	signed := `{"data":{"reference":"QR-UNKNOWN","status":"PENDING"}}`
	sig, err := rail.SignPayload([]byte("zap"), []byte(signed))
	require.NoError(t, err)
	tampered := `{"data":{"reference":"QR-UNKNOWN","status":"PENDING"},"Data":{"status":"PAID"}}`
	status, _, _ = call(t, srv, caller{}, http.MethodPost, "/callbacks/zapper_qr", tampered, rail.SignatureHeader, sig)
	assert.Equal(t, http.StatusUnauthorized, status)
}
