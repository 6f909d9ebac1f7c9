package stripeapi

import (
	"encoding/json"
	"fmt"
)

// Webhook event types the reconciler understands. Everything else is
// acknowledged and dropped.
const (
	// EventCheckoutSessionCompleted reports a paid checkout session.
	EventCheckoutSessionCompleted = "checkout.session.completed"
	// EventPaymentIntentFailed reports a failed payment attempt.
	EventPaymentIntentFailed = "payment_intent.payment_failed"
	// EventCheckoutSessionExpired reports a checkout session that timed out.
	EventCheckoutSessionExpired = "checkout.session.expired"
)

// Event is a decoded webhook envelope. Data.Object stays raw until the event
// type determines which object shape applies.
type Event struct {
	ID   string `json:"id"`   // Processor-assigned event id.
	Type string `json:"type"` // Event type string.
	Data struct {
		Object json.RawMessage `json:"object"` // Type-dependent payload.
	} `json:"data"`
}

// ParseEvent decodes a webhook payload into an Event envelope.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if errDecode := json.Unmarshal(payload, &event); errDecode != nil {
		return nil, fmt.Errorf("stripeapi: decode event: %w", errDecode)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("stripeapi: event missing id or type")
	}
	return &event, nil
}

// CheckoutSessionObject is the event payload for checkout.session.* events.
type CheckoutSessionObject struct {
	ID                string `json:"id"`                  // Session identifier.
	ClientReferenceID string `json:"client_reference_id"` // Order id set at session creation.
	PaymentIntent     string `json:"payment_intent"`      // Payment confirmation id.
}

// SessionObject decodes Data.Object as a checkout session.
func (e *Event) SessionObject() (*CheckoutSessionObject, error) {
	var obj CheckoutSessionObject
	if errDecode := json.Unmarshal(e.Data.Object, &obj); errDecode != nil {
		return nil, fmt.Errorf("stripeapi: decode session object: %w", errDecode)
	}
	return &obj, nil
}

// PaymentIntentObject is the event payload for payment_intent.* events.
type PaymentIntentObject struct {
	ID               string            `json:"id"`       // Intent identifier.
	Metadata         map[string]string `json:"metadata"` // Metadata set at session creation; carries order_id.
	LastPaymentError *struct {
		Message string `json:"message"` // Human-readable failure reason.
	} `json:"last_payment_error"`
}

// IntentObject decodes Data.Object as a payment intent.
func (e *Event) IntentObject() (*PaymentIntentObject, error) {
	var obj PaymentIntentObject
	if errDecode := json.Unmarshal(e.Data.Object, &obj); errDecode != nil {
		return nil, fmt.Errorf("stripeapi: decode intent object: %w", errDecode)
	}
	return &obj, nil
}
