package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func line(code string, side Side, amount string) JournalLine {
	return JournalLine{AccountCode: code, Side: side, Amount: decimal.RequireFromString(amount)}
}

func TestJournalEntry_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lines   []JournalLine
		wantErr error
	}{
		{
			name:  "balanced three line entry",
			lines: []JournalLine{line("1100", SideDebit, "103.08"), line("2100", SideCredit, "100"), line("4000", SideCredit, "3.08")},
		},
		{
			name:    "single line",
			lines:   []JournalLine{line("1100", SideDebit, "10")},
			wantErr: ErrInsufficientLines,
		},
		{
			name:    "zero amount",
			lines:   []JournalLine{line("1100", SideDebit, "0"), line("2100", SideCredit, "0")},
			wantErr: ErrInvalidLineAmount,
		},
		{
			name:    "negative amount",
			lines:   []JournalLine{line("1100", SideDebit, "-5"), line("2100", SideCredit, "-5")},
			wantErr: ErrInvalidLineAmount,
		},
		{
			name:    "unbalanced by one cent",
			lines:   []JournalLine{line("1100", SideDebit, "100.00"), line("2100", SideCredit, "99.99")},
			wantErr: ErrUnbalancedEntry,
		},
		{
			name:    "bad side",
			lines:   []JournalLine{{AccountCode: "1100", Side: "both", Amount: decimal.NewFromInt(1)}, line("2100", SideCredit, "1")},
			wantErr: ErrInvalidLineSide,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &JournalEntry{Reference: "REF-1", Lines: tt.lines}
			err := e.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestJournalEntry_Reverse(t *testing.T) {
	t.Parallel()

	orig := &JournalEntry{
		Reference: "VOUCHER-1",
		Lines:     []JournalLine{line("2100", SideDebit, "508"), line("2200", SideCredit, "500"), line("4000", SideCredit, "8")},
	}
	rev := orig.Reverse("VOUCHER-1-REV", "reversal", time.Now())

	if err := rev.Validate(); err != nil {
		t.Fatalf("reversal must be balanced: %v", err)
	}
	for i := range orig.Lines {
		if rev.Lines[i].Side != orig.Lines[i].Side.Opposite() {
			t.Fatalf("line %d side not swapped", i)
		}
		if !rev.Lines[i].Amount.Equal(orig.Lines[i].Amount) {
			t.Fatalf("line %d amount changed", i)
		}
	}
	if orig.Lines[0].Side != SideDebit {
		t.Fatal("original entry must be untouched")
	}
}
