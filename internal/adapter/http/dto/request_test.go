package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     any
		wantErr string
	}{
		{
			name: "valid rpp",
			req: &PayShapRPPRequest{
				WalletID:         "w-1",
				Amount:           decimal.RequireFromString("100.00"),
				BeneficiaryName:  "Thandi",
				BeneficiaryProxy: "0821234567",
			},
		},
		{
			name:    "zero amount",
			req:     &PayShapRPPRequest{WalletID: "w-1", BeneficiaryName: "Thandi"},
			wantErr: "amount must be greater than 0",
		},
		{
			name:    "negative tip",
			req:     &QRPayRequest{WalletID: "w-1", MerchantWalletID: "m-1", QRCode: "qr", Amount: decimal.NewFromInt(5), Tip: decimal.NewFromInt(-1)},
			wantErr: "tip must be at least 0",
		},
		{
			name:    "missing wallet",
			req:     &IssueVoucherRequest{Amount: decimal.NewFromInt(50)},
			wantErr: "wallet_id is required",
		},
		{
			name:    "unknown deposit rail",
			req:     &DepositRequest{WalletID: "w-1", Rail: "zapper_qr", Amount: decimal.NewFromInt(10)},
			wantErr: "rail must be one of",
		},
		{
			name: "journal needs two lines",
			req: &PostJournalEntryRequest{
				Reference: "JE-1",
				Lines:     []JournalLineRequest{{AccountCode: "1000", Side: "debit", Amount: decimal.NewFromInt(1)}},
			},
			wantErr: "lines must be at least 2",
		},
		{
			name: "journal line side",
			req: &PostJournalEntryRequest{
				Reference: "JE-1",
				Lines: []JournalLineRequest{
					{AccountCode: "1000", Side: "debit", Amount: decimal.NewFromInt(1)},
					{AccountCode: "2100", Side: "left", Amount: decimal.NewFromInt(1)},
				},
			},
			wantErr: "lines[1].side must be one of",
		},
		{
			name:    "voucher code digits",
			req:     &RedeemVoucherRequest{Code: "ABCD1234", WalletID: "w-1"},
			wantErr: "code must be numeric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid request, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPostJournalEntryRequest_ToUseCaseInput(t *testing.T) {
	postedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := &PostJournalEntryRequest{
		Reference:   "JE-9",
		Description: "opening float",
		PostedAt:    &postedAt,
		Lines: []JournalLineRequest{
			{AccountCode: "1000", Side: "debit", Amount: decimal.RequireFromString("10.50")},
			{AccountCode: "2110", Side: "credit", Amount: decimal.RequireFromString("10.50"), Memo: "float"},
		},
	}

	got := req.ToUseCaseInput()
	if got.Reference != "JE-9" || got.PostedAt != &postedAt || len(got.Lines) != 2 {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.Lines[1].AccountCode != "2110" || got.Lines[1].Side != domain.SideCredit || got.Lines[1].Memo != "float" {
		t.Fatalf("unexpected line %+v", got.Lines[1])
	}
}

func TestCreateWalletRequest_DefaultsOwnerToCaller(t *testing.T) {
	req := &CreateWalletRequest{Kind: "user"}
	if got := req.ToUseCaseInput("user-1"); got.OwnerID != "user-1" || got.Kind != domain.WalletKindUser {
		t.Fatalf("unexpected input %+v", got)
	}

	req.OwnerID = "merchant-7"
	if got := req.ToUseCaseInput("user-1"); got.OwnerID != "merchant-7" {
		t.Fatalf("expected explicit owner, got %+v", got)
	}
}

func TestPayShapRTPRequest_ExpiryMinutes(t *testing.T) {
	req := &PayShapRTPRequest{WalletID: "w-1", PayerProxy: "0820000000", Amount: decimal.NewFromInt(20), ExpiresInMinutes: 15}
	got := req.ToUseCaseInput("user-1")
	if got.ExpiresAfter != 15*time.Minute || got.UserID != "user-1" {
		t.Fatalf("unexpected input %+v", got)
	}
}
