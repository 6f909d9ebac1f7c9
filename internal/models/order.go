package models

import "time"

// OrderStatus is the lifecycle state of a checkout attempt.
type OrderStatus string

// Order lifecycle states. Orders start pending and move forward exactly once.
const (
	// OrderStatusPending marks an order awaiting a payment outcome.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid marks a successfully completed payment.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusFailed marks a rejected or errored payment.
	OrderStatusFailed OrderStatus = "failed"
	// OrderStatusExpired marks a checkout session that timed out unpaid.
	OrderStatusExpired OrderStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusExpired:
		return true
	default:
		return false
	}
}

// Order represents one checkout attempt and its terminal outcome.
type Order struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Amount   int64       `gorm:"not null" json:"amount"`                                        // Amount in minor currency units.
	Currency string      `gorm:"type:varchar(8);not null" json:"currency"`                      // Lowercase ISO currency code.
	Status   OrderStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"` // Lifecycle state.

	StripeSessionID string `gorm:"type:text;index" json:"stripe_session_id"` // Hosted checkout session id.
	PaymentIntentID string `gorm:"type:text" json:"payment_intent_id"`       // Payment confirmation id from the processor.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}
