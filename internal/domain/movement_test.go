package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to MovementStatus
		want     bool
	}{
		{MovementStatusInitiated, MovementStatusProcessing, true},
		{MovementStatusInitiated, MovementStatusCompleted, true},
		{MovementStatusInitiated, MovementStatusExpired, true},
		{MovementStatusProcessing, MovementStatusRejected, true},
		{MovementStatusProcessing, MovementStatusCancelled, true},
		{MovementStatusProcessing, MovementStatusInitiated, false},
		{MovementStatusCompleted, MovementStatusRejected, false},
		{MovementStatusRejected, MovementStatusCompleted, false},
		{MovementStatusExpired, MovementStatusProcessing, false},
		{MovementStatusCancelled, MovementStatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMovementStatus_Classes(t *testing.T) {
	t.Parallel()

	for _, s := range []MovementStatus{MovementStatusCompleted, MovementStatusRejected, MovementStatusExpired, MovementStatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []MovementStatus{MovementStatusInitiated, MovementStatusProcessing} {
		if s.IsTerminal() || s.IsFailure() {
			t.Errorf("%s should be neither terminal nor failure", s)
		}
	}
	if MovementStatusCompleted.IsFailure() {
		t.Error("completed is not a failure")
	}
	if MovementStatus("settled").IsValid() {
		t.Error("unknown status reported valid")
	}
}

func TestMapRailStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rail Rail
		code string
		want MovementStatus
	}{
		{RailPayShapRPP, "ACSP", MovementStatusCompleted},
		{RailPayShapRTP, "acsc", MovementStatusCompleted},
		{RailPayShapRPP, "RJCT", MovementStatusRejected},
		{RailPayShapRPP, "PDNG", MovementStatusProcessing},
		{RailZapperQR, " paid ", MovementStatusCompleted},
		{RailZapperQR, "DECLINED", MovementStatusRejected},
		{RailHaloDotNFC, "TIMEOUT", MovementStatusExpired},
		{RailPeachCard, "000.000.000", MovementStatusCompleted},
		{RailPeachCard, "800.100.152", MovementStatusRejected},
		{RailEasyPay, "REDEEMED", MovementStatusCompleted},
		{RailEasyPay, "SOMETHING_NEW", MovementStatusProcessing},
		{Rail("unknown"), "ACSP", MovementStatusProcessing},
	}
	for _, tt := range tests {
		if got := MapRailStatus(tt.rail, tt.code); got != tt.want {
			t.Errorf("MapRailStatus(%s, %q) = %s, want %s", tt.rail, tt.code, got, tt.want)
		}
	}
}

func TestRail_SupportsPolling(t *testing.T) {
	t.Parallel()

	if RailEasyPay.SupportsPolling() || RailMoolahVoucher.SupportsPolling() {
		t.Error("voucher rails have no status endpoint")
	}
	if !RailPayShapRPP.SupportsPolling() || !RailZapperQR.SupportsPolling() {
		t.Error("payshap and zapper expose status endpoints")
	}
	if !RailMoolahVoucher.IsValid() || Rail("swift").IsValid() {
		t.Error("rail validity mismatch")
	}
	for _, r := range PollableRails() {
		if !r.SupportsPolling() {
			t.Errorf("PollableRails() lists %s", r)
		}
	}
	if got := len(PollableRails()); got != 5 {
		t.Errorf("expected 5 pollable rails, got %d", got)
	}
}

func TestMoneyMovement_Helpers(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Second)
	m := &MoneyMovement{
		Amount:    decimal.RequireFromString("100"),
		Fee:       decimal.RequireFromString("3.08"),
		ExpiresAt: &past,
	}
	if !m.TotalDebit().Equal(decimal.RequireFromString("103.08")) {
		t.Errorf("TotalDebit() = %s", m.TotalDebit())
	}
	if !m.IsExpired(now) {
		t.Error("movement past expiry should be expired")
	}

	m.AppendMetadata(JSON{"a": 1})
	m.AppendMetadata(JSON{"b": 2})
	if len(m.Metadata) != 2 {
		t.Errorf("metadata keys = %d, want 2", len(m.Metadata))
	}
}

func TestDecimalToMinor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"103.08", 10308, false},
		{"0.01", 1, false},
		{"250", 25000, false},
		{"10.005", 0, true},
	}
	for _, tt := range tests {
		got, err := DecimalToMinor(decimal.RequireFromString(tt.in))
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("DecimalToMinor(%s) error = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DecimalToMinor(%s) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatRand(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		30800: "R308.00",
		308:   "R3.08",
		5:     "R0.05",
		-150:  "-R1.50",
	}
	for in, want := range tests {
		if got := FormatRand(in); got != want {
			t.Errorf("FormatRand(%d) = %q, want %q", in, got, want)
		}
	}
}
