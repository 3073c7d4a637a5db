package domain

import "time"

// Event types
const (
	EventTypeRailDispatch      = "rail.dispatch"
	EventTypeMovementInitiated = "movement.initiated"
	EventTypeMovementSettled   = "movement.settled"
	EventTypeMovementRefunded  = "movement.refunded"
	EventTypeJournalPosted     = "journal.posted"
	EventTypeAccountCreated    = "account.created"
	EventTypeAccountRenamed    = "account.renamed"
)

// Aggregate types
const (
	AggregateTypeMovement = "movement"
	AggregateTypeJournal  = "journal"
	AggregateTypeAccount  = "account"
	AggregateTypeWallet   = "wallet"
)

// OutboxEvent represents an event written with the local commit and
// delivered later by the outbox relay.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// RailDispatchEvent payload
type RailDispatchEvent struct {
	MovementID            string `json:"movement_id"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	Rail                  string `json:"rail"`
}

// MovementSettledEvent payload
type MovementSettledEvent struct {
	MovementID            string `json:"movement_id"`
	MerchantTransactionID string `json:"merchant_transaction_id"`
	Rail                  string `json:"rail"`
	Status                string `json:"status"`
	Amount                string `json:"amount"`
	Refunded              bool   `json:"refunded"`
}

// Map converts the payload into an outbox payload.
func (e RailDispatchEvent) Map() map[string]any {
	return map[string]any{
		"movement_id":             e.MovementID,
		"merchant_transaction_id": e.MerchantTransactionID,
		"rail":                    e.Rail,
	}
}

// Map converts the payload into an outbox payload.
func (e MovementSettledEvent) Map() map[string]any {
	return map[string]any{
		"movement_id":             e.MovementID,
		"merchant_transaction_id": e.MerchantTransactionID,
		"rail":                    e.Rail,
		"status":                  e.Status,
		"amount":                  e.Amount,
		"refunded":                e.Refunded,
	}
}
