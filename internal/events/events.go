// Package events publishes ledger changes after they are committed.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	AccountCreated      EventType = "account_created"
	AccountUpdated      EventType = "account_updated"
	AccountDeactivated  EventType = "account_deactivated"
	TransactionRecorded EventType = "transaction_recorded"
	TransferRecorded    EventType = "transfer_recorded"
	TransactionReversed EventType = "transaction_reversed"
	OperationPlaced     EventType = "operation_placed"
	OperationResolved   EventType = "operation_resolved"
	ClubFeePaid         EventType = "club_fee_paid"
	OwnerRestored       EventType = "owner_restored"
	AccountsImported    EventType = "accounts_imported"
)

// Event describes one committed change. Consumers key on OwnerId.
type Event struct {
	Type           EventType       `json:"type"`
	OwnerId        string          `json:"ownerId"`
	OperationId    string          `json:"operationId,omitempty"`
	AccountIds     []string        `json:"accountIds,omitempty"`
	TransactionIds []string        `json:"transactionIds,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// Publisher delivers events. Publishing happens after commit, so a failure
// never undoes the change it describes.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
