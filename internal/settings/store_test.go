package settings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:settings_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(&models.Setting{}, &models.AuditLog{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func TestStoreGetMissingKey(t *testing.T) {
	t.Parallel()

	conn := setupSettingsTestDB(t)
	store := NewStore(conn, audit.NewRecorder(conn))

	if _, errGet := store.Get(context.Background(), "NO_SUCH_KEY_EXISTS"); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errGet)
	}
	if got := store.GetDefault(context.Background(), "NO_SUCH_KEY_EXISTS", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestStoreSetCreatesThenUpdates(t *testing.T) {
	t.Parallel()

	conn := setupSettingsTestDB(t)
	store := NewStore(conn, audit.NewRecorder(conn))
	ctx := context.Background()

	adminID := uint64(3)
	row, errCreate := store.Set(ctx, "PAYMENT_METHODS", "card,blik", SetParams{
		Description: "enabled methods",
		ActorID:     &adminID,
		ActorName:   "admin",
	})
	if errCreate != nil {
		t.Fatalf("set create: %v", errCreate)
	}
	if row.Value != "card,blik" {
		t.Fatalf("expected value card,blik, got %q", row.Value)
	}

	var createEntry models.AuditLog
	if errFind := conn.Where("action = ?", models.AuditActionSettingCreate).First(&createEntry).Error; errFind != nil {
		t.Fatalf("expected setting_create audit entry: %v", errFind)
	}
	if createEntry.OldValue != "" || createEntry.NewValue != "card,blik" {
		t.Fatalf("unexpected create snapshot: old=%q new=%q", createEntry.OldValue, createEntry.NewValue)
	}
	if createEntry.ResourceID != "PAYMENT_METHODS" {
		t.Fatalf("expected resource id PAYMENT_METHODS, got %q", createEntry.ResourceID)
	}

	if _, errUpdate := store.Set(ctx, "PAYMENT_METHODS", "card,blik,p24", SetParams{ActorName: "admin"}); errUpdate != nil {
		t.Fatalf("set update: %v", errUpdate)
	}

	var updateEntry models.AuditLog
	if errFind := conn.Where("action = ?", models.AuditActionSettingUpdate).First(&updateEntry).Error; errFind != nil {
		t.Fatalf("expected setting_update audit entry: %v", errFind)
	}
	if updateEntry.OldValue != "card,blik" || updateEntry.NewValue != "card,blik,p24" {
		t.Fatalf("unexpected update snapshot: old=%q new=%q", updateEntry.OldValue, updateEntry.NewValue)
	}

	value, errGet := store.Get(ctx, "PAYMENT_METHODS")
	if errGet != nil {
		t.Fatalf("get: %v", errGet)
	}
	if value != "card,blik,p24" {
		t.Fatalf("expected updated value, got %q", value)
	}
}

func TestStoreGetList(t *testing.T) {
	t.Parallel()

	conn := setupSettingsTestDB(t)
	store := NewStore(conn, audit.NewRecorder(conn))
	ctx := context.Background()

	if _, errSet := store.Set(ctx, "SUPPORTED_CURRENCIES", " pln, usd ,eur,", SetParams{ActorName: "admin"}); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}

	got := store.GetList(ctx, "SUPPORTED_CURRENCIES", DefaultSupportedCurrencies)
	want := []string{"pln", "usd", "eur"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestStoreSeedDefaults(t *testing.T) {
	t.Parallel()

	conn := setupSettingsTestDB(t)
	store := NewStore(conn, audit.NewRecorder(conn))
	ctx := context.Background()

	seeded, errSeed := store.SeedDefaults(ctx)
	if errSeed != nil {
		t.Fatalf("seed: %v", errSeed)
	}
	if !seeded {
		t.Fatalf("expected first seed to insert rows")
	}

	value, errGet := store.Get(ctx, PaymentMethodsKey)
	if errGet != nil {
		t.Fatalf("get seeded key: %v", errGet)
	}
	if value != DefaultPaymentMethods {
		t.Fatalf("expected default methods, got %q", value)
	}

	// Re-running must not overwrite operator edits.
	if _, errSet := store.Set(ctx, PaymentMethodsKey, "card", SetParams{ActorName: "admin"}); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	seeded, errSeed = store.SeedDefaults(ctx)
	if errSeed != nil {
		t.Fatalf("reseed: %v", errSeed)
	}
	if seeded {
		t.Fatalf("expected second seed to be a no-op")
	}
	if got := store.GetDefault(ctx, PaymentMethodsKey, ""); got != "card" {
		t.Fatalf("expected operator value preserved, got %q", got)
	}
}
