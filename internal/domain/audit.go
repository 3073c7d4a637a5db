package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (movement.settle, journal.post, etc.)
	ResourceType string // Type of resource (movement, wallet, account)
	ResourceID   string // ID of the resource
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is an opaque structured attachment.
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate  AuditAction = "account.create"
	AuditActionAccountRename  AuditAction = "account.rename"
	AuditActionJournalPost    AuditAction = "journal.post"
	AuditActionWalletCreate   AuditAction = "wallet.create"
	AuditActionWalletFund     AuditAction = "wallet.fund"
	AuditActionWalletStatus   AuditAction = "wallet.status"
	AuditActionMovementCreate AuditAction = "movement.create"
	AuditActionMovementSettle AuditAction = "movement.settle"
	AuditActionMovementRefund AuditAction = "movement.refund"
	AuditActionMovementCancel AuditAction = "movement.cancel"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// SystemUserID attributes actions taken by workers and callbacks.
const SystemUserID = "system"

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
