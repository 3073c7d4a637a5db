package usecase

import (
	"fmt"

	"github.com/mymoolah/walletcore/internal/domain"
)

// ChartOfAccounts names the control accounts money movements post to.
type ChartOfAccounts struct {
	Bank             string
	UserWallets      string
	MerchantFloats   string
	VoucherLiability string
	SupplierPayable  string
	VATControl       string
	FeeRevenue       string
	PayShapClearing  string
	ZapperClearing   string
	CardClearing     string
	EasyPayClearing  string
}

// DefaultChartOfAccounts returns the standard account codes.
func DefaultChartOfAccounts() ChartOfAccounts {
	return ChartOfAccounts{
		Bank:             "1000",
		UserWallets:      "2100",
		MerchantFloats:   "2110",
		VoucherLiability: "2200",
		SupplierPayable:  "2300",
		VATControl:       "2400",
		FeeRevenue:       "4000",
		PayShapClearing:  "2500",
		ZapperClearing:   "2510",
		CardClearing:     "2520",
		EasyPayClearing:  "2530",
	}
}

// AccountSpec describes a control account to bootstrap.
type AccountSpec struct {
	Code       string
	Name       string
	Type       domain.AccountType
	NormalSide domain.Side
}

// Specs lists every control account of the chart.
func (c ChartOfAccounts) Specs() []AccountSpec {
	liability := func(code, name string) AccountSpec {
		return AccountSpec{Code: code, Name: name, Type: domain.AccountTypeLiability, NormalSide: domain.SideCredit}
	}
	return []AccountSpec{
		{Code: c.Bank, Name: "Bank", Type: domain.AccountTypeAsset, NormalSide: domain.SideDebit},
		liability(c.UserWallets, "Client Wallets"),
		liability(c.MerchantFloats, "Merchant and Supplier Floats"),
		liability(c.VoucherLiability, "Voucher Liability"),
		liability(c.SupplierPayable, "Supplier Payable"),
		liability(c.VATControl, "VAT Control"),
		{Code: c.FeeRevenue, Name: "Fee Revenue", Type: domain.AccountTypeRevenue, NormalSide: domain.SideCredit},
		liability(c.PayShapClearing, "PayShap Clearing"),
		liability(c.ZapperClearing, "Zapper Clearing"),
		liability(c.CardClearing, "Card and NFC Clearing"),
		liability(c.EasyPayClearing, "EasyPay Clearing"),
	}
}

// ClearingFor returns the clearing account funds sit in while a rail settles.
func (c ChartOfAccounts) ClearingFor(rail domain.Rail) (string, error) {
	var code string
	switch rail {
	case domain.RailPayShapRPP, domain.RailPayShapRTP:
		code = c.PayShapClearing
	case domain.RailZapperQR:
		code = c.ZapperClearing
	case domain.RailHaloDotNFC, domain.RailPeachCard:
		code = c.CardClearing
	case domain.RailEasyPay:
		code = c.EasyPayClearing
	case domain.RailMoolahVoucher:
		code = c.VoucherLiability
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedRail, rail)
	}
	if code == "" {
		return "", fmt.Errorf("%w: clearing account for %s", domain.ErrLedgerAccountNotConfigured, rail)
	}
	return code, nil
}

// FeeAccount returns the ledger account a fee leg is credited to.
func (c ChartOfAccounts) FeeAccount(kind domain.FeeLegKind) (string, error) {
	var code string
	switch kind {
	case domain.FeeLegSupplierPayable:
		code = c.SupplierPayable
	case domain.FeeLegPlatformRevenue:
		code = c.FeeRevenue
	case domain.FeeLegVAT:
		code = c.VATControl
	}
	if code == "" {
		return "", fmt.Errorf("%w: fee leg %s", domain.ErrLedgerAccountNotConfigured, kind)
	}
	return code, nil
}

// WalletControl returns the control account a wallet kind rolls up into.
func (c ChartOfAccounts) WalletControl(kind domain.WalletKind) (string, error) {
	var code string
	switch kind {
	case domain.WalletKindUser, domain.WalletKindClient:
		code = c.UserWallets
	case domain.WalletKindMerchant, domain.WalletKindSupplier:
		code = c.MerchantFloats
	default:
		return "", domain.ErrInvalidWalletKind
	}
	if code == "" {
		return "", fmt.Errorf("%w: wallet control for %s", domain.ErrLedgerAccountNotConfigured, kind)
	}
	return code, nil
}
