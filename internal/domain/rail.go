package domain

import "strings"

// Rail identifies an external payment rail or internal instrument.
type Rail string

const (
	RailPayShapRPP    Rail = "payshap_rpp"
	RailPayShapRTP    Rail = "payshap_rtp"
	RailZapperQR      Rail = "zapper_qr"
	RailHaloDotNFC    Rail = "halodot_nfc"
	RailPeachCard     Rail = "peach_card"
	RailEasyPay       Rail = "easypay_voucher"
	RailMoolahVoucher Rail = "mm_voucher"
)

// IsValid reports whether r is a known rail.
func (r Rail) IsValid() bool {
	_, ok := railStatusCodes[r]
	return ok || r == RailMoolahVoucher
}

// SupportsPolling reports whether the rail exposes a status endpoint.
func (r Rail) SupportsPolling() bool {
	switch r {
	case RailPayShapRPP, RailPayShapRTP, RailZapperQR, RailHaloDotNFC, RailPeachCard:
		return true
	}
	return false
}

// PollableRails lists the rails with a status endpoint.
func PollableRails() []Rail {
	var out []Rail
	for _, r := range Rails() {
		if r.SupportsPolling() {
			out = append(out, r)
		}
	}
	return out
}

// Rails lists every external rail with a status mapping.
func Rails() []Rail {
	return []Rail{RailPayShapRPP, RailPayShapRTP, RailZapperQR, RailHaloDotNFC, RailPeachCard, RailEasyPay}
}

var payShapCodes = map[string]MovementStatus{
	"ACSP": MovementStatusCompleted,
	"ACCC": MovementStatusCompleted,
	"ACSC": MovementStatusCompleted,
	"RJCT": MovementStatusRejected,
	"CANC": MovementStatusCancelled,
	"PDNG": MovementStatusProcessing,
	"ACTC": MovementStatusProcessing,
	"RCVD": MovementStatusProcessing,
}

var railStatusCodes = map[Rail]map[string]MovementStatus{
	RailPayShapRPP: payShapCodes,
	RailPayShapRTP: payShapCodes,
	RailZapperQR: {
		"PAID":      MovementStatusCompleted,
		"COMPLETED": MovementStatusCompleted,
		"DECLINED":  MovementStatusRejected,
		"FAILED":    MovementStatusRejected,
		"CANCELLED": MovementStatusCancelled,
		"PENDING":   MovementStatusProcessing,
	},
	RailHaloDotNFC: {
		"APPROVED": MovementStatusCompleted,
		"DECLINED": MovementStatusRejected,
		"REVERSED": MovementStatusRejected,
		"TIMEOUT":  MovementStatusExpired,
		"PENDING":  MovementStatusProcessing,
	},
	RailPeachCard: {
		"000.000.000": MovementStatusCompleted,
		"000.000.100": MovementStatusCompleted,
		"000.100.110": MovementStatusCompleted,
		"000.200.000": MovementStatusProcessing,
		"000.200.100": MovementStatusProcessing,
		"800.100.151": MovementStatusRejected,
		"800.100.152": MovementStatusRejected,
		"800.100.155": MovementStatusRejected,
		"100.396.101": MovementStatusCancelled,
		"100.380.501": MovementStatusExpired,
	},
	RailEasyPay: {
		"REDEEMED":  MovementStatusCompleted,
		"SETTLED":   MovementStatusCompleted,
		"PAID":      MovementStatusCompleted,
		"EXPIRED":   MovementStatusExpired,
		"CANCELLED": MovementStatusCancelled,
		"PENDING":   MovementStatusProcessing,
	},
}

// MapRailStatus translates a rail-specific status code into a movement
// status. Unknown rails and codes map to processing, never to a terminal state.
func MapRailStatus(rail Rail, code string) MovementStatus {
	codes, ok := railStatusCodes[rail]
	if !ok {
		return MovementStatusProcessing
	}
	key := strings.TrimSpace(code)
	if rail != RailPeachCard {
		key = strings.ToUpper(key)
	}
	if status, ok := codes[key]; ok {
		return status
	}
	return MovementStatusProcessing
}
