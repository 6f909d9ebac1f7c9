package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested settings key has no row and no default.
var ErrNotFound = errors.New("settings: key not found")

// Store reads and writes key/value configuration rows. Every Get re-reads the
// database so configuration changes take effect on the next request without a
// restart. Handlers receive a Store instead of reaching for globals.
type Store struct {
	db    *gorm.DB
	audit *audit.Recorder
}

// NewStore constructs a Store. The recorder may be nil for read-only callers.
func NewStore(db *gorm.DB, recorder *audit.Recorder) *Store {
	return &Store{db: db, audit: recorder}
}

// Get returns the current value for a key. A missing row falls back to the
// identically named environment variable, then to ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrNotFound
	}

	var row models.Setting
	errFind := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	switch {
	case errFind == nil:
		return row.Value, nil
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		if env := strings.TrimSpace(os.Getenv(key)); env != "" {
			return env, nil
		}
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("settings: get %s: %w", key, errFind)
	}
}

// GetDefault returns the value for a key, or fallback when absent.
func (s *Store) GetDefault(ctx context.Context, key, fallback string) string {
	value, errGet := s.Get(ctx, key)
	if errGet != nil {
		return fallback
	}
	return value
}

// GetList returns a comma-separated setting as a trimmed slice.
func (s *Store) GetList(ctx context.Context, key, fallback string) []string {
	raw := s.GetDefault(ctx, key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SetParams carries actor attribution for a settings write.
type SetParams struct {
	Description string  // Optional replacement description; empty keeps the old one.
	ActorID     *uint64 // Admin performing the change.
	ActorName   string  // Admin username for the audit entry.
	IPAddress   string  // Request IP for the audit entry.
	UserAgent   string  // Request User-Agent for the audit entry.
}

// Set upserts a settings row and writes a setting_create or setting_update
// audit entry with the before/after values. Concurrent writers to the same
// key race at the row level; the last committed write wins.
func (s *Store) Set(ctx context.Context, key, value string, params SetParams) (models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.Setting{}, errors.New("settings: empty key")
	}

	var (
		row      models.Setting
		oldValue string
		action   = models.AuditActionSettingCreate
	)
	errFind := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	switch {
	case errFind == nil:
		action = models.AuditActionSettingUpdate
		oldValue = row.Value
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		row = models.Setting{Key: key}
	default:
		return models.Setting{}, fmt.Errorf("settings: set %s: %w", key, errFind)
	}

	row.Value = value
	if params.Description != "" {
		row.Description = params.Description
	}
	row.UpdatedBy = params.ActorID

	if errSave := s.db.WithContext(ctx).Save(&row).Error; errSave != nil {
		return models.Setting{}, fmt.Errorf("settings: save %s: %w", key, errSave)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:      params.ActorID,
		ActorName:    params.ActorName,
		Action:       action,
		ResourceType: models.AuditResourceSetting,
		ResourceID:   key,
		OldValue:     oldValue,
		NewValue:     value,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
	})
	return row, nil
}

// List returns all settings rows ordered by key.
func (s *Store) List(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if errFind := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("settings: list: %w", errFind)
	}
	return rows, nil
}

// SeedDefaults inserts any missing default settings rows. Existing rows are
// never overwritten. It reports whether anything was inserted.
func (s *Store) SeedDefaults(ctx context.Context) (bool, error) {
	seeded := false
	for _, def := range defaultRows {
		var count int64
		if errCount := s.db.WithContext(ctx).
			Model(&models.Setting{}).
			Where("key = ?", def.key).
			Count(&count).Error; errCount != nil {
			return seeded, fmt.Errorf("settings: seed %s: %w", def.key, errCount)
		}
		if count > 0 {
			continue
		}
		row := models.Setting{Key: def.key, Value: def.value, Description: def.description}
		if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
			return seeded, fmt.Errorf("settings: seed %s: %w", def.key, errCreate)
		}
		seeded = true
	}
	return seeded, nil
}
