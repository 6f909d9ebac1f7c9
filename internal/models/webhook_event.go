package models

import (
	"time"

	"gorm.io/datatypes"
)

// Webhook event outcomes recorded in the processed-event ledger.
const (
	// WebhookOutcomeApplied marks an event that advanced an order.
	WebhookOutcomeApplied = "applied"
	// WebhookOutcomeOrphaned marks an event whose order id did not resolve.
	WebhookOutcomeOrphaned = "orphaned"
	// WebhookOutcomeStale marks an event that arrived after the order reached a terminal state.
	WebhookOutcomeStale = "stale"
)

// WebhookEvent is the processed-event ledger. One row per processor event id
// makes reconciliation idempotent: a redelivered event id is a no-op.
type WebhookEvent struct {
	EventID string `gorm:"type:varchar(255);primaryKey"` // Processor-assigned event id.
	Type    string `gorm:"type:varchar(128);not null"`   // Processor event type string.

	OrderID *uint64 `gorm:"index"`                     // Resolved order id, nil when orphaned.
	Outcome string  `gorm:"type:varchar(32);not null"` // What processing did with the event.

	Payload datatypes.JSON `gorm:"type:jsonb"` // Raw event object for debugging.

	ReceivedAt time.Time `gorm:"not null;autoCreateTime"` // First delivery timestamp.
}
