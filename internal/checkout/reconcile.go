package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/stripeapi"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// eventKind is the closed set of webhook events the reconciler acts on.
type eventKind int

const (
	kindSessionCompleted eventKind = iota
	kindPaymentFailed
	kindSessionExpired
)

// eventKindOf maps a processor event type string onto the closed kind set.
func eventKindOf(eventType string) (eventKind, bool) {
	switch eventType {
	case stripeapi.EventCheckoutSessionCompleted:
		return kindSessionCompleted, true
	case stripeapi.EventPaymentIntentFailed:
		return kindPaymentFailed, true
	case stripeapi.EventCheckoutSessionExpired:
		return kindSessionExpired, true
	default:
		return 0, false
	}
}

// transition returns the next status for an order receiving an event kind.
// Only pending orders move; terminal states never transition again.
func transition(current models.OrderStatus, kind eventKind) (models.OrderStatus, bool) {
	if current != models.OrderStatusPending {
		return current, false
	}
	switch kind {
	case kindSessionCompleted:
		return models.OrderStatusPaid, true
	case kindPaymentFailed:
		return models.OrderStatusFailed, true
	case kindSessionExpired:
		return models.OrderStatusExpired, true
	default:
		return current, false
	}
}

// orderEvent is a normalized webhook event carrying only the fields the
// state machine needs.
type orderEvent struct {
	kind            eventKind
	eventID         string
	eventType       string
	orderID         uint64 // Zero when the order id did not resolve.
	sessionID       string
	paymentIntentID string
	failureReason   string
	payload         []byte
}

// Result describes what Apply did with an event.
type Result string

// Apply outcomes.
const (
	// ResultApplied means an order transitioned.
	ResultApplied Result = "applied"
	// ResultDuplicate means the event id was already processed.
	ResultDuplicate Result = "duplicate"
	// ResultOrphaned means the event's order id did not resolve.
	ResultOrphaned Result = "orphaned"
	// ResultStale means the order was already terminal.
	ResultStale Result = "stale"
	// ResultUnhandled means the event type is outside the closed set.
	ResultUnhandled Result = "unhandled"
)

// Reconciler advances order state from verified webhook events. A ledger row
// per event id makes redelivery a no-op.
type Reconciler struct {
	db    *gorm.DB
	audit *audit.Recorder
}

// NewReconciler constructs a Reconciler.
func NewReconciler(db *gorm.DB, recorder *audit.Recorder) *Reconciler {
	return &Reconciler{db: db, audit: recorder}
}

// Apply processes one verified event. The caller must have checked the
// signature already; Apply never sees unauthenticated payloads.
func (r *Reconciler) Apply(ctx context.Context, event *stripeapi.Event, payload []byte) (Result, error) {
	kind, known := eventKindOf(event.Type)
	if !known {
		log.WithField("type", event.Type).Debug("reconcile: ignoring unhandled event type")
		return ResultUnhandled, nil
	}

	var processed models.WebhookEvent
	errLedger := r.db.WithContext(ctx).Where("event_id = ?", event.ID).First(&processed).Error
	switch {
	case errLedger == nil:
		log.WithField("event_id", event.ID).Info("reconcile: duplicate delivery ignored")
		return ResultDuplicate, nil
	case errors.Is(errLedger, gorm.ErrRecordNotFound):
		// First delivery.
	default:
		return "", fmt.Errorf("reconcile: ledger lookup: %w", errLedger)
	}

	normalized, errNorm := normalizeEvent(event, kind, payload)
	if errNorm != nil {
		return "", errNorm
	}

	if normalized.orderID == 0 {
		log.WithFields(log.Fields{
			"event_id": event.ID,
			"type":     event.Type,
		}).Warn("reconcile: event does not reference a resolvable order")
		return ResultOrphaned, r.recordLedger(ctx, normalized, nil, models.WebhookOutcomeOrphaned)
	}

	var order models.Order
	errFind := r.db.WithContext(ctx).First(&order, normalized.orderID).Error
	switch {
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		log.WithFields(log.Fields{
			"event_id": event.ID,
			"order_id": normalized.orderID,
		}).Warn("reconcile: event references unknown order")
		return ResultOrphaned, r.recordLedger(ctx, normalized, nil, models.WebhookOutcomeOrphaned)
	case errFind != nil:
		return "", fmt.Errorf("reconcile: load order %d: %w", normalized.orderID, errFind)
	}

	next, ok := transition(order.Status, normalized.kind)
	if !ok {
		log.WithFields(log.Fields{
			"event_id": event.ID,
			"order_id": order.ID,
			"status":   order.Status,
		}).Info("reconcile: order already terminal, event is stale")
		return ResultStale, r.recordLedger(ctx, normalized, &order.ID, models.WebhookOutcomeStale)
	}

	oldStatus := order.Status
	errTx := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     next,
			"updated_at": time.Now().UTC(),
		}
		if normalized.kind == kindSessionCompleted && normalized.paymentIntentID != "" {
			updates["payment_intent_id"] = normalized.paymentIntentID
		}
		if errUpdate := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; errUpdate != nil {
			return errUpdate
		}
		return createLedgerRow(tx, normalized, &order.ID, models.WebhookOutcomeApplied)
	})
	if errTx != nil {
		if isDuplicateLedgerErr(errTx) {
			// A concurrent delivery of the same event id committed first.
			return ResultDuplicate, nil
		}
		return "", fmt.Errorf("reconcile: apply event %s: %w", event.ID, errTx)
	}

	r.audit.Record(ctx, audit.Entry{
		ActorName:    audit.ActorWebhook,
		Action:       auditActionFor(normalized.kind),
		ResourceType: models.AuditResourceOrder,
		ResourceID:   strconv.FormatUint(order.ID, 10),
		OldValue:     string(oldStatus),
		NewValue:     string(next),
		Detail:       auditDetailFor(normalized),
	})
	log.WithFields(log.Fields{
		"event_id": event.ID,
		"order_id": order.ID,
		"from":     oldStatus,
		"to":       next,
	}).Info("reconcile: order transitioned")
	return ResultApplied, nil
}

// normalizeEvent extracts the fields the state machine needs for a kind.
func normalizeEvent(event *stripeapi.Event, kind eventKind, payload []byte) (orderEvent, error) {
	normalized := orderEvent{
		kind:      kind,
		eventID:   event.ID,
		eventType: event.Type,
		payload:   payload,
	}
	switch kind {
	case kindSessionCompleted, kindSessionExpired:
		obj, errObj := event.SessionObject()
		if errObj != nil {
			return orderEvent{}, errObj
		}
		normalized.sessionID = obj.ID
		normalized.paymentIntentID = obj.PaymentIntent
		normalized.orderID = parseOrderID(obj.ClientReferenceID)
	case kindPaymentFailed:
		obj, errObj := event.IntentObject()
		if errObj != nil {
			return orderEvent{}, errObj
		}
		normalized.paymentIntentID = obj.ID
		normalized.orderID = parseOrderID(obj.Metadata["order_id"])
		if obj.LastPaymentError != nil {
			normalized.failureReason = obj.LastPaymentError.Message
		}
	}
	return normalized, nil
}

// parseOrderID converts an order reference into an id; zero means unresolved.
func parseOrderID(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil {
		return 0
	}
	return id
}

// recordLedger writes a ledger row outside a transaction.
func (r *Reconciler) recordLedger(ctx context.Context, normalized orderEvent, orderID *uint64, outcome string) error {
	if errCreate := createLedgerRow(r.db.WithContext(ctx), normalized, orderID, outcome); errCreate != nil {
		if isDuplicateLedgerErr(errCreate) {
			return nil
		}
		return fmt.Errorf("reconcile: record ledger for %s: %w", normalized.eventID, errCreate)
	}
	return nil
}

// createLedgerRow inserts the processed-event row for an event id.
func createLedgerRow(tx *gorm.DB, normalized orderEvent, orderID *uint64, outcome string) error {
	row := models.WebhookEvent{
		EventID:    normalized.eventID,
		Type:       normalized.eventType,
		OrderID:    orderID,
		Outcome:    outcome,
		Payload:    datatypes.JSON(normalized.payload),
		ReceivedAt: time.Now().UTC(),
	}
	return tx.Create(&row).Error
}

// isDuplicateLedgerErr reports whether an insert hit the event id primary key.
func isDuplicateLedgerErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

// auditActionFor maps an event kind to its audit action tag.
func auditActionFor(kind eventKind) string {
	switch kind {
	case kindSessionCompleted:
		return models.AuditActionPaymentCompleted
	case kindPaymentFailed:
		return models.AuditActionPaymentFailed
	default:
		return models.AuditActionPaymentSessionExpired
	}
}

// auditDetailFor builds the free-text detail for a transition's audit entry.
func auditDetailFor(normalized orderEvent) string {
	switch normalized.kind {
	case kindSessionCompleted:
		return fmt.Sprintf("Payment completed via webhook. Payment Intent: %s, Session: %s", normalized.paymentIntentID, normalized.sessionID)
	case kindPaymentFailed:
		reason := normalized.failureReason
		if reason == "" {
			reason = "Unknown"
		}
		return fmt.Sprintf("Payment failed via webhook. Payment Intent: %s, Failure reason: %s", normalized.paymentIntentID, reason)
	default:
		return fmt.Sprintf("Payment session expired via webhook. Session: %s", normalized.sessionID)
	}
}
