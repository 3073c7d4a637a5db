package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/adapter/repository/memory"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
	"github.com/mymoolah/walletcore/internal/usecase/mocks"
)

type harness struct {
	store     *memory.Store
	journal   *memory.JournalRepository
	wallets   *memory.WalletRepository
	movements *memory.MovementRepository
	taxes     *memory.TaxRepository
	outbox    *memory.OutboxRepository
	audit     *memory.AuditRepository

	ledger    *usecase.LedgerUseCase
	walletUC  *usecase.WalletUseCase
	feeAdmin  *usecase.FeeAdminUseCase
	engine    *usecase.SettlementEngine
	deps      *usecase.MovementDeps
	vouchers  *usecase.VoucherUseCase
	payshap   *usecase.PayShapUseCase
	deposits  *usecase.DepositUseCase
	callbacks *usecase.CallbackUseCase
	recon     *usecase.ReconciliationUseCase
	movement  *usecase.MovementUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	idGen := mocks.NewMockIDGenerator()
	chart := usecase.DefaultChartOfAccounts()

	h := &harness{
		store:     store,
		journal:   memory.NewJournalRepository(store),
		wallets:   memory.NewWalletRepository(store),
		movements: memory.NewMovementRepository(store),
		taxes:     memory.NewTaxRepository(store),
		outbox:    memory.NewOutboxRepository(store),
	}
	accounts := memory.NewAccountRepository(store)
	walletTxs := memory.NewWalletTransactionRepository(store)
	audit := memory.NewAuditRepository(store)
	h.audit = audit
	fees := memory.NewFeeConfigRepository(store)
	tiers := memory.NewTierRepository(store)

	h.ledger = usecase.NewLedgerUseCase(txm, accounts, h.journal, h.outbox, audit, idGen, nil)
	balance := usecase.NewBalanceService(h.wallets, walletTxs, idGen, nil)
	h.walletUC = usecase.NewWalletUseCase(txm, h.wallets, walletTxs, audit, idGen, balance, h.ledger, chart)
	h.feeAdmin = usecase.NewFeeAdminUseCase(txm, fees, tiers, idGen)

	h.deps = &usecase.MovementDeps{
		TxManager: txm,
		Movements: h.movements,
		Wallets:   h.wallets,
		Taxes:     h.taxes,
		Outbox:    h.outbox,
		Audit:     audit,
		IDGen:     idGen,
		Ledger:    h.ledger,
		Balance:   balance,
		Fees:      usecase.NewFeeCalculator(fees, tiers, nil),
		Chart:     chart,
	}
	h.engine = usecase.NewSettlementEngine(h.deps)
	h.vouchers = usecase.NewVoucherUseCase(h.deps, h.engine, nil, 0)
	h.payshap = usecase.NewPayShapUseCase(h.deps, 60*time.Minute)
	h.deposits = usecase.NewDepositUseCase(h.deps)
	h.callbacks = usecase.NewCallbackUseCase(jsonParser{}, h.engine, nil)
	h.recon = usecase.NewReconciliationUseCase(h.ledger, h.wallets)
	h.movement = usecase.NewMovementUseCase(h.movements, h.taxes, h.engine)

	require.NoError(t, h.ledger.EnsureChart(context.Background(), chart))
	return h
}

// wallet opens a wallet for owner and funds it with rand.
func (h *harness) wallet(t *testing.T, owner string, kind domain.WalletKind, funds string) *domain.Wallet {
	t.Helper()
	ctx := context.Background()
	w, err := h.walletUC.CreateWallet(ctx, usecase.CreateWalletInput{OwnerID: owner, Kind: kind, Name: owner})
	require.NoError(t, err)
	if funds != "" {
		_, err = h.walletUC.FundWallet(ctx, usecase.FundWalletInput{WalletID: w.ID, Amount: decimal.RequireFromString(funds)})
		require.NoError(t, err)
	}
	return w
}

func (h *harness) configureFee(t *testing.T, supplier, service string, supplierCost, platform domain.FeeLegConfig) {
	t.Helper()
	_, err := h.feeAdmin.ConfigureFee(context.Background(), domain.FeeConfiguration{
		SupplierCode:  supplier,
		ServiceType:   service,
		TierLevel:     domain.TierBronze,
		SupplierCost:  supplierCost,
		PlatformFee:   platform,
		EffectiveFrom: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, walletID string) decimal.Decimal {
	t.Helper()
	w, err := h.wallets.GetByID(context.Background(), walletID)
	require.NoError(t, err)
	return w.Balance
}

// requireConsistent asserts the trial balance nets to zero and every wallet
// rollup matches its control account.
func (h *harness) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := h.recon.Report(context.Background())
	require.NoError(t, err)
	require.True(t, report.LedgerConsistent, "ledger out of balance: debits %s credits %s", report.TotalDebits, report.TotalCredits)
	require.Zero(t, report.Discrepancies)
}

func fixed(minor int64) domain.FeeLegConfig {
	return domain.FeeLegConfig{Type: domain.FeeTypeFixed, FixedMinor: minor}
}

func fixedWithVAT(minor, vatBP int64) domain.FeeLegConfig {
	return domain.FeeLegConfig{Type: domain.FeeTypeFixed, FixedMinor: minor, VATRateBasisPoints: vatBP}
}

func zar(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// jsonParser decodes the test callback shape.
type jsonParser struct{}

func (jsonParser) ParseCallback(rail domain.Rail, payload []byte) (*usecase.RailCallback, error) {
	var body struct {
		Reference string           `json:"reference"`
		UETR      string           `json:"uetr"`
		Status    string           `json:"status"`
		Amount    *decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, domain.ErrInvalidCallback
	}
	return &usecase.RailCallback{
		Reference:         body.Reference,
		ExternalReference: body.UETR,
		StatusCode:        body.Status,
		Amount:            body.Amount,
		Raw:               domain.JSON{"status": body.Status},
	}, nil
}
