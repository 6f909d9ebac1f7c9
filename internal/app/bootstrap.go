package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/config"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/security"
	"github.com/blikpay/checkout/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// bootstrap seeds the admin account and default settings on first startup.
// Existing rows are never touched; re-running is safe.
func bootstrap(ctx context.Context, conn *gorm.DB, cfg config.BootstrapConfig, store *settings.Store, recorder *audit.Recorder) error {
	adminCreated, errAdmin := ensureAdmin(ctx, conn, cfg)
	if errAdmin != nil {
		return errAdmin
	}

	settingsSeeded, errSeed := store.SeedDefaults(ctx)
	if errSeed != nil {
		return errSeed
	}

	if adminCreated || settingsSeeded {
		recorder.Record(ctx, audit.Entry{
			ActorName:    audit.ActorSystem,
			Action:       models.AuditActionAdminInit,
			ResourceType: models.AuditResourceSystem,
			ResourceID:   "admin_panel",
			Detail:       "Admin user and default settings initialized",
		})
		log.Info("app: bootstrap data initialized")
	}
	return nil
}

// ensureAdmin creates the bootstrap admin account when absent. It reports
// whether a row was created.
func ensureAdmin(ctx context.Context, conn *gorm.DB, cfg config.BootstrapConfig) (bool, error) {
	var existing models.AdminUser
	errFind := conn.WithContext(ctx).Where("username = ?", cfg.AdminUsername).First(&existing).Error
	switch {
	case errFind == nil:
		return false, nil
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		// Create below.
	default:
		return false, fmt.Errorf("app: lookup admin: %w", errFind)
	}

	if cfg.AdminPassword == "" {
		return false, fmt.Errorf("app: no admin account exists and no bootstrap password configured (set ADMIN_PASSWORD)")
	}

	hash, errHash := security.HashPassword(cfg.AdminPassword)
	if errHash != nil {
		return false, fmt.Errorf("app: hash bootstrap password: %w", errHash)
	}

	admin := models.AdminUser{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Active:       true,
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return false, fmt.Errorf("app: create admin: %w", errCreate)
	}
	log.WithField("username", cfg.AdminUsername).Info("app: created bootstrap admin account")
	return true, nil
}
