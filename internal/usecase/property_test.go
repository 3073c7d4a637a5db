package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

func TestLedgerStaysBalancedAcrossFlows(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	payer := h.wallet(t, "user-1", domain.WalletKindUser, "5000.00")
	payee := h.wallet(t, "user-2", domain.WalletKindUser, "")
	float := h.wallet(t, "easypay", domain.WalletKindSupplier, "")
	h.configureFee(t, usecase.SupplierEasyPay, usecase.ServiceCashOut, fixedWithVAT(450, 1500), fixedWithVAT(333, 1500))
	h.configureFee(t, usecase.SupplierMyMoolah, usecase.ServiceVoucherIssue, fixed(0), domain.FeeLegConfig{
		Type: domain.FeeTypePercentage, RateBasisPoints: 125, VATRateBasisPoints: 1500,
	})

	for i := 1; i <= 5; i++ {
		amount := decimal.NewFromInt(int64(37 * i)).Add(decimal.New(int64(i), -2))

		cashOut, err := h.vouchers.IssueCashOutVoucher(ctx, usecase.IssueVoucherInput{
			UserID: "user-1", WalletID: payer.ID, Amount: amount, FloatWalletID: float.ID,
		})
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = h.vouchers.CancelVoucher(ctx, cashOut.Movement.MerchantTransactionID, "user-1")
			require.NoError(t, err)
		}

		voucher, err := h.vouchers.IssueVoucher(ctx, usecase.IssueVoucherInput{
			UserID: "user-1", WalletID: payer.ID, Amount: amount,
		})
		require.NoError(t, err)
		if i%2 == 1 {
			_, err = h.vouchers.RedeemVoucher(ctx, usecase.RedeemVoucherInput{
				Code: voucher.Movement.VoucherCode, UserID: "user-2", WalletID: payee.ID,
			})
		} else {
			_, err = h.vouchers.CancelVoucher(ctx, voucher.Movement.MerchantTransactionID, "user-1")
		}
		require.NoError(t, err)

		topUp, err := h.payshap.InitiateRTP(ctx, usecase.InitiateRTPInput{
			UserID: "user-2", WalletID: payee.ID, Amount: amount, PayerProxy: "0820000000",
		})
		require.NoError(t, err)
		_, err = h.engine.ApplyOutcome(ctx, usecase.Outcome{
			Rail:              domain.RailPayShapRTP,
			ExternalReference: topUp.Movement.ExternalReference,
			Status:            domain.MovementStatusCompleted,
			Source:            usecase.SourceCallback,
		})
		require.NoError(t, err)

		h.requireConsistent(t)
	}

	ok, err := h.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	tb, err := h.ledger.GetTrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.Totals.Net.IsZero())
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	w := h.wallet(t, "user-1", domain.WalletKindUser, "250.00")
	float := h.wallet(t, "easypay", domain.WalletKindSupplier, "")
	h.configureFee(t, usecase.SupplierEasyPay, usecase.ServiceCashOut, fixed(0), fixed(0))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.vouchers.IssueCashOutVoucher(ctx, usecase.IssueVoucherInput{
				Reference:     fmt.Sprintf("EPC-C-%d", i),
				UserID:        "user-1",
				WalletID:      w.ID,
				Amount:        zar("100"),
				FloatWalletID: float.ID,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.True(t, zar("50").Equal(h.balance(t, w.ID)))
	assert.False(t, h.balance(t, w.ID).IsNegative())
	h.requireConsistent(t)
}

func TestConcurrentOutcomesSettleOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	w := h.wallet(t, "user-1", domain.WalletKindUser, "")
	res, err := h.payshap.InitiateRTP(ctx, usecase.InitiateRTPInput{
		Reference: "RTP-RACE", UserID: "user-1", WalletID: w.ID, Amount: zar("75.50"), PayerProxy: "0820000000",
	})
	require.NoError(t, err)

	const deliveries = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := h.engine.ApplyOutcome(ctx, usecase.Outcome{
				MovementID: res.Movement.ID,
				Status:     domain.MovementStatusCompleted,
				Source:     usecase.SourcePoll,
			})
			if !assert.NoError(t, err) {
				return
			}
			if out.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			} else {
				assert.True(t, out.AlreadyProcessed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	assert.True(t, zar("75.50").Equal(h.balance(t, w.ID)))

	_, err = h.ledger.GetEntryByReference(ctx, "RTP-RACE-SETTLE")
	require.NoError(t, err)
	h.requireConsistent(t)
}

func TestCompensationRestoresPreDebitBalance(t *testing.T) {
	tests := []struct {
		name     string
		initiate func(h *harness, walletID, floatID string) (string, error)
	}{
		{
			name: "standalone voucher",
			initiate: func(h *harness, walletID, _ string) (string, error) {
				res, err := h.vouchers.IssueVoucher(context.Background(), usecase.IssueVoucherInput{
					UserID: "user-1", WalletID: walletID, Amount: zar("123.45"),
				})
				if err != nil {
					return "", err
				}
				return res.Movement.MerchantTransactionID, nil
			},
		},
		{
			name: "cash-out voucher",
			initiate: func(h *harness, walletID, floatID string) (string, error) {
				res, err := h.vouchers.IssueCashOutVoucher(context.Background(), usecase.IssueVoucherInput{
					UserID: "user-1", WalletID: walletID, Amount: zar("123.45"), FloatWalletID: floatID,
				})
				if err != nil {
					return "", err
				}
				return res.Movement.MerchantTransactionID, nil
			},
		},
		{
			name: "payshap payment",
			initiate: func(h *harness, walletID, _ string) (string, error) {
				res, err := h.payshap.InitiateRPP(context.Background(), usecase.InitiateRPPInput{
					UserID: "user-1", WalletID: walletID, Amount: zar("123.45"), BeneficiaryProxy: "0829998888",
				})
				if err != nil {
					return "", err
				}
				return res.Movement.MerchantTransactionID, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t)
			pct := domain.FeeLegConfig{Type: domain.FeeTypeHybrid, FixedMinor: 99, RateBasisPoints: 35, VATRateBasisPoints: 1500}
			h.configureFee(t, usecase.SupplierMyMoolah, usecase.ServiceVoucherIssue, fixed(0), pct)
			h.configureFee(t, usecase.SupplierEasyPay, usecase.ServiceCashOut, fixed(800), pct)
			h.configureFee(t, usecase.SupplierStandardBank, usecase.ServicePayShapRPP, fixedWithVAT(150, 1500), pct)

			w := h.wallet(t, "user-1", domain.WalletKindUser, "400.00")
			float := h.wallet(t, "easypay", domain.WalletKindSupplier, "")
			before := h.balance(t, w.ID)

			ref, err := tt.initiate(h, w.ID, float.ID)
			require.NoError(t, err)
			require.True(t, h.balance(t, w.ID).LessThan(before))

			res, err := h.movement.Cancel(ctx, ref, "user-1")
			require.NoError(t, err)
			assert.True(t, res.Refunded)

			assert.True(t, before.Equal(h.balance(t, w.ID)), "balance %s, want %s", h.balance(t, w.ID), before)
			assert.True(t, h.balance(t, float.ID).IsZero())

			_, err = h.ledger.GetEntryByReference(ctx, ref+"-REV")
			require.NoError(t, err)
			h.requireConsistent(t)
		})
	}
}

func TestUnbalancedEntryPersistsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.wallet(t, "user-1", domain.WalletKindUser, "10.00")

	before := h.journal.EntryCount()
	tbBefore, err := h.ledger.GetTrialBalance(ctx)
	require.NoError(t, err)

	_, err = h.ledger.PostJournalEntry(ctx, usecase.PostJournalEntryInput{
		Reference: "MANUAL-1",
		Lines: []usecase.JournalLineInput{
			{AccountCode: "1000", Side: domain.SideDebit, Amount: zar("10.00")},
			{AccountCode: "2100", Side: domain.SideCredit, Amount: zar("9.99")},
		},
	})
	require.ErrorIs(t, err, domain.ErrUnbalancedEntry)

	assert.Equal(t, before, h.journal.EntryCount())
	_, err = h.ledger.GetEntryByReference(ctx, "MANUAL-1")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	tbAfter, err := h.ledger.GetTrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tbBefore.Totals.Debits.Equal(tbAfter.Totals.Debits))
	assert.True(t, tbBefore.Totals.Credits.Equal(tbAfter.Totals.Credits))
	h.requireConsistent(t)
}
