package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultVoucherExpiry is the lifetime of an issued voucher.
	DefaultVoucherExpiry = 30 * 24 * time.Hour

	// DefaultQRExpiry is how long a QR payment may wait for Zapper.
	DefaultQRExpiry = 30 * time.Minute

	// DefaultRTPExpiry is the lifetime of a PayShap request-to-pay.
	DefaultRTPExpiry = 60 * time.Minute

	// DefaultSweepBatch bounds the records one sweep run touches.
	DefaultSweepBatch = 100
)

// Journal reference suffixes derived from a movement's merchant transaction id.
const (
	settleSuffix   = "-SETTLE"
	reversalSuffix = "-REV"
)

// Supplier and service codes used to look up fee configurations.
const (
	SupplierStandardBank = "STANDARDBANK"
	SupplierZapper       = "ZAPPER"
	SupplierEasyPay      = "EASYPAY"
	SupplierMyMoolah     = "MYMOOLAH"

	ServicePayShapRPP   = "payshap_rpp"
	ServiceQRPayment    = "qr_payment"
	ServiceCashOut      = "cashout"
	ServiceVoucherIssue = "voucher_issue"
)

// Reference prefixes for generated merchant transaction ids.
const (
	prefixRPP     = "RPP"
	prefixRTP     = "RTP"
	prefixQR      = "QR"
	prefixVoucher = "VCH"
	prefixCashOut = "EPC"
	prefixTopUp   = "EPT"
	prefixDeposit = "DEP"
)
