package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/stripeapi"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(
		&models.Order{},
		&models.Setting{},
		&models.AuditLog{},
		&models.WebhookEvent{},
	); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func createPendingOrder(t *testing.T, conn *gorm.DB) models.Order {
	t.Helper()
	order := models.Order{Amount: 2000, Currency: "pln", Status: models.OrderStatusPending}
	if errCreate := conn.Create(&order).Error; errCreate != nil {
		t.Fatalf("create order: %v", errCreate)
	}
	return order
}

func sessionCompletedEvent(t *testing.T, eventID string, orderID uint64) (*stripeapi.Event, []byte) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":%q,"type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","client_reference_id":"%d","payment_intent":"pi_test_1"}}}`,
		eventID, orderID))
	return mustParseEvent(t, payload), payload
}

func mustParseEvent(t *testing.T, payload []byte) *stripeapi.Event {
	t.Helper()
	event, errParse := stripeapi.ParseEvent(payload)
	if errParse != nil {
		t.Fatalf("parse event: %v", errParse)
	}
	return event
}

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current models.OrderStatus
		kind    eventKind
		want    models.OrderStatus
		ok      bool
	}{
		{models.OrderStatusPending, kindSessionCompleted, models.OrderStatusPaid, true},
		{models.OrderStatusPending, kindPaymentFailed, models.OrderStatusFailed, true},
		{models.OrderStatusPending, kindSessionExpired, models.OrderStatusExpired, true},
		{models.OrderStatusPaid, kindPaymentFailed, models.OrderStatusPaid, false},
		{models.OrderStatusPaid, kindSessionCompleted, models.OrderStatusPaid, false},
		{models.OrderStatusFailed, kindSessionCompleted, models.OrderStatusFailed, false},
		{models.OrderStatusExpired, kindSessionCompleted, models.OrderStatusExpired, false},
	}
	for _, tc := range cases {
		got, ok := transition(tc.current, tc.kind)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("transition(%s, %d) = (%s, %v), want (%s, %v)", tc.current, tc.kind, got, ok, tc.want, tc.ok)
		}
	}
}

func TestReconcileSessionCompleted(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	order := createPendingOrder(t, conn)
	event, payload := sessionCompletedEvent(t, "evt_complete_1", order.ID)

	result, errApply := reconciler.Apply(context.Background(), event, payload)
	if errApply != nil {
		t.Fatalf("apply: %v", errApply)
	}
	if result != ResultApplied {
		t.Fatalf("expected applied, got %s", result)
	}

	var updated models.Order
	if errFind := conn.First(&updated, order.ID).Error; errFind != nil {
		t.Fatalf("load order: %v", errFind)
	}
	if updated.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", updated.Status)
	}
	if updated.PaymentIntentID != "pi_test_1" {
		t.Fatalf("expected payment intent stored, got %q", updated.PaymentIntentID)
	}

	var entry models.AuditLog
	if errFind := conn.Where("action = ?", models.AuditActionPaymentCompleted).First(&entry).Error; errFind != nil {
		t.Fatalf("expected payment_completed audit entry: %v", errFind)
	}
	if entry.OldValue != "pending" || entry.NewValue != "paid" {
		t.Fatalf("unexpected snapshot: old=%q new=%q", entry.OldValue, entry.NewValue)
	}
	if entry.ActorName != audit.ActorWebhook {
		t.Fatalf("expected webhook actor, got %q", entry.ActorName)
	}

	var ledger models.WebhookEvent
	if errFind := conn.Where("event_id = ?", "evt_complete_1").First(&ledger).Error; errFind != nil {
		t.Fatalf("expected ledger row: %v", errFind)
	}
	if ledger.Outcome != models.WebhookOutcomeApplied {
		t.Fatalf("expected applied outcome, got %q", ledger.Outcome)
	}
}

func TestReconcileDuplicateEventID(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	order := createPendingOrder(t, conn)
	event, payload := sessionCompletedEvent(t, "evt_dup_1", order.ID)
	ctx := context.Background()

	if _, errApply := reconciler.Apply(ctx, event, payload); errApply != nil {
		t.Fatalf("first apply: %v", errApply)
	}

	result, errApply := reconciler.Apply(ctx, event, payload)
	if errApply != nil {
		t.Fatalf("second apply: %v", errApply)
	}
	if result != ResultDuplicate {
		t.Fatalf("expected duplicate, got %s", result)
	}

	var auditCount int64
	if errCount := conn.Model(&models.AuditLog{}).Count(&auditCount).Error; errCount != nil {
		t.Fatalf("count audit: %v", errCount)
	}
	if auditCount != 1 {
		t.Fatalf("expected one audit entry after redelivery, got %d", auditCount)
	}

	var updated models.Order
	if errFind := conn.First(&updated, order.ID).Error; errFind != nil {
		t.Fatalf("load order: %v", errFind)
	}
	if updated.Status != models.OrderStatusPaid {
		t.Fatalf("expected order unchanged at paid, got %s", updated.Status)
	}
}

func TestReconcileStaleEventAfterTerminalState(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	order := createPendingOrder(t, conn)
	ctx := context.Background()

	completed, completedPayload := sessionCompletedEvent(t, "evt_paid_first", order.ID)
	if _, errApply := reconciler.Apply(ctx, completed, completedPayload); errApply != nil {
		t.Fatalf("apply completed: %v", errApply)
	}

	failedPayload := []byte(fmt.Sprintf(
		`{"id":"evt_late_failure","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_test_1","metadata":{"order_id":"%d"},"last_payment_error":{"message":"card declined"}}}}`,
		order.ID))
	result, errApply := reconciler.Apply(ctx, mustParseEvent(t, failedPayload), failedPayload)
	if errApply != nil {
		t.Fatalf("apply stale: %v", errApply)
	}
	if result != ResultStale {
		t.Fatalf("expected stale, got %s", result)
	}

	var updated models.Order
	if errFind := conn.First(&updated, order.ID).Error; errFind != nil {
		t.Fatalf("load order: %v", errFind)
	}
	if updated.Status != models.OrderStatusPaid {
		t.Fatalf("terminal order must not move, got %s", updated.Status)
	}

	var ledger models.WebhookEvent
	if errFind := conn.Where("event_id = ?", "evt_late_failure").First(&ledger).Error; errFind != nil {
		t.Fatalf("expected stale ledger row: %v", errFind)
	}
	if ledger.Outcome != models.WebhookOutcomeStale {
		t.Fatalf("expected stale outcome, got %q", ledger.Outcome)
	}

	var failureAudits int64
	if errCount := conn.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditActionPaymentFailed).
		Count(&failureAudits).Error; errCount != nil {
		t.Fatalf("count audit: %v", errCount)
	}
	if failureAudits != 0 {
		t.Fatalf("stale event must not write an audit entry")
	}
}

func TestReconcileOrphanedEvent(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	event, payload := sessionCompletedEvent(t, "evt_orphan_1", 99999)

	result, errApply := reconciler.Apply(context.Background(), event, payload)
	if errApply != nil {
		t.Fatalf("apply: %v", errApply)
	}
	if result != ResultOrphaned {
		t.Fatalf("expected orphaned, got %s", result)
	}

	var ledger models.WebhookEvent
	if errFind := conn.Where("event_id = ?", "evt_orphan_1").First(&ledger).Error; errFind != nil {
		t.Fatalf("expected orphaned ledger row: %v", errFind)
	}
	if ledger.Outcome != models.WebhookOutcomeOrphaned {
		t.Fatalf("expected orphaned outcome, got %q", ledger.Outcome)
	}
	if ledger.OrderID != nil {
		t.Fatalf("orphaned ledger row must not reference an order")
	}

	var auditCount int64
	if errCount := conn.Model(&models.AuditLog{}).Count(&auditCount).Error; errCount != nil {
		t.Fatalf("count audit: %v", errCount)
	}
	if auditCount != 0 {
		t.Fatalf("orphaned event must not write an audit entry")
	}
}

func TestReconcileUnresolvableOrderReference(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	payload := []byte(`{"id":"evt_no_ref","type":"checkout.session.expired","data":{"object":{"id":"cs_test_2","client_reference_id":""}}}`)

	result, errApply := reconciler.Apply(context.Background(), mustParseEvent(t, payload), payload)
	if errApply != nil {
		t.Fatalf("apply: %v", errApply)
	}
	if result != ResultOrphaned {
		t.Fatalf("expected orphaned, got %s", result)
	}
}

func TestReconcilePaymentFailedAndSessionExpired(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	ctx := context.Background()

	failedOrder := createPendingOrder(t, conn)
	failedPayload := []byte(fmt.Sprintf(
		`{"id":"evt_fail_1","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_fail_1","metadata":{"order_id":"%d"},"last_payment_error":{"message":"insufficient funds"}}}}`,
		failedOrder.ID))
	if result, errApply := reconciler.Apply(ctx, mustParseEvent(t, failedPayload), failedPayload); errApply != nil || result != ResultApplied {
		t.Fatalf("apply failed event: result=%v err=%v", result, errApply)
	}

	expiredOrder := createPendingOrder(t, conn)
	expiredPayload := []byte(fmt.Sprintf(
		`{"id":"evt_expire_1","type":"checkout.session.expired","data":{"object":{"id":"cs_expire_1","client_reference_id":"%d"}}}`,
		expiredOrder.ID))
	if result, errApply := reconciler.Apply(ctx, mustParseEvent(t, expiredPayload), expiredPayload); errApply != nil || result != ResultApplied {
		t.Fatalf("apply expired event: result=%v err=%v", result, errApply)
	}

	var reloaded models.Order
	if errFind := conn.First(&reloaded, failedOrder.ID).Error; errFind != nil {
		t.Fatalf("load failed order: %v", errFind)
	}
	if reloaded.Status != models.OrderStatusFailed {
		t.Fatalf("expected failed, got %s", reloaded.Status)
	}

	var reloadedExpired models.Order
	if errFind := conn.First(&reloadedExpired, expiredOrder.ID).Error; errFind != nil {
		t.Fatalf("load expired order: %v", errFind)
	}
	if reloadedExpired.Status != models.OrderStatusExpired {
		t.Fatalf("expected expired, got %s", reloadedExpired.Status)
	}

	var failAudit models.AuditLog
	if errFind := conn.Where("action = ?", models.AuditActionPaymentFailed).First(&failAudit).Error; errFind != nil {
		t.Fatalf("expected payment_failed audit entry: %v", errFind)
	}
	if failAudit.Detail == "" {
		t.Fatalf("expected failure reason in audit detail")
	}
}

func TestReconcileUnhandledEventType(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	reconciler := NewReconciler(conn, audit.NewRecorder(conn))
	payload := []byte(`{"id":"evt_other","type":"invoice.paid","data":{"object":{}}}`)

	result, errApply := reconciler.Apply(context.Background(), mustParseEvent(t, payload), payload)
	if errApply != nil {
		t.Fatalf("apply: %v", errApply)
	}
	if result != ResultUnhandled {
		t.Fatalf("expected unhandled, got %s", result)
	}

	var ledgerCount int64
	if errCount := conn.Model(&models.WebhookEvent{}).Count(&ledgerCount).Error; errCount != nil {
		t.Fatalf("count ledger: %v", errCount)
	}
	if ledgerCount != 0 {
		t.Fatalf("unhandled event types must not enter the ledger")
	}
}
