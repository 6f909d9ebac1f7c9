package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/settings"
)

func TestRetentionCleanerSweepsOldRows(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	recorder := audit.NewRecorder(conn)
	store := settings.NewStore(conn, recorder)
	ctx := context.Background()

	if _, errSet := store.Set(ctx, settings.WebhookRetentionDaysKey, "30", settings.SetParams{ActorName: audit.ActorSystem}); errSet != nil {
		t.Fatalf("set retention: %v", errSet)
	}
	if _, errSet := store.Set(ctx, settings.AuditLogRetentionDaysKey, "30", settings.SetParams{ActorName: audit.ActorSystem}); errSet != nil {
		t.Fatalf("set retention: %v", errSet)
	}

	old := time.Now().UTC().AddDate(0, 0, -60)
	recent := time.Now().UTC()
	rows := []models.WebhookEvent{
		{EventID: "evt_old", Type: "checkout.session.completed", Outcome: models.WebhookOutcomeApplied, ReceivedAt: old},
		{EventID: "evt_recent", Type: "checkout.session.completed", Outcome: models.WebhookOutcomeApplied, ReceivedAt: recent},
	}
	for i := range rows {
		if errCreate := conn.Create(&rows[i]).Error; errCreate != nil {
			t.Fatalf("create ledger row: %v", errCreate)
		}
	}
	logs := []models.AuditLog{
		{ActorName: "system", Action: models.AuditActionPaymentCompleted, ResourceType: models.AuditResourceOrder, CreatedAt: old},
		{ActorName: "system", Action: models.AuditActionPaymentCompleted, ResourceType: models.AuditResourceOrder, CreatedAt: recent},
	}
	for i := range logs {
		if errCreate := conn.Create(&logs[i]).Error; errCreate != nil {
			t.Fatalf("create audit row: %v", errCreate)
		}
	}

	NewRetentionCleaner(conn, store).CleanupOnce(ctx)

	var ledger []models.WebhookEvent
	if errFind := conn.Find(&ledger).Error; errFind != nil {
		t.Fatalf("load ledger: %v", errFind)
	}
	if len(ledger) != 1 || ledger[0].EventID != "evt_recent" {
		t.Fatalf("expected only the recent ledger row, got %+v", ledger)
	}

	var auditCount int64
	if errCount := conn.Model(&models.AuditLog{}).Count(&auditCount).Error; errCount != nil {
		t.Fatalf("count audit: %v", errCount)
	}
	if auditCount != 3 {
		t.Fatalf("expected recent audit row plus two setting writes, got %d", auditCount)
	}
}

func TestRetentionCleanerDisabledByZero(t *testing.T) {
	t.Parallel()

	conn := setupCheckoutTestDB(t)
	recorder := audit.NewRecorder(conn)
	store := settings.NewStore(conn, recorder)
	ctx := context.Background()

	if _, errSet := store.Set(ctx, settings.WebhookRetentionDaysKey, "0", settings.SetParams{ActorName: audit.ActorSystem}); errSet != nil {
		t.Fatalf("set retention: %v", errSet)
	}

	row := models.WebhookEvent{EventID: "evt_ancient", Type: "checkout.session.expired", Outcome: models.WebhookOutcomeOrphaned, ReceivedAt: time.Now().UTC().AddDate(-1, 0, 0)}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("create ledger row: %v", errCreate)
	}

	NewRetentionCleaner(conn, store).CleanupOnce(ctx)

	var ledgerCount int64
	if errCount := conn.Model(&models.WebhookEvent{}).Count(&ledgerCount).Error; errCount != nil {
		t.Fatalf("count ledger: %v", errCount)
	}
	if ledgerCount != 1 {
		t.Fatalf("zero retention must disable cleanup, got %d rows", ledgerCount)
	}
}
