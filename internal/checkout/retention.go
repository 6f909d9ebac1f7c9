package checkout

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/blikpay/checkout/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultRetentionInterval = 6 * time.Hour
	defaultDeleteBatchSize   = 5000
	maxDeleteBatchesPerRun   = 2000
)

// RetentionCleaner periodically deletes old rows from the webhook event
// ledger and the audit log. Retention windows are read from the settings
// store on every run so changes apply without a restart.
type RetentionCleaner struct {
	db        *gorm.DB
	settings  *settings.Store
	interval  time.Duration
	batchSize int
}

// NewRetentionCleaner constructs a RetentionCleaner.
func NewRetentionCleaner(db *gorm.DB, store *settings.Store) *RetentionCleaner {
	if db == nil {
		return nil
	}
	return &RetentionCleaner{
		db:        db,
		settings:  store,
		interval:  defaultRetentionInterval,
		batchSize: defaultDeleteBatchSize,
	}
}

// Start launches the cleanup loop in a background goroutine.
func (c *RetentionCleaner) Start(ctx context.Context) {
	if c == nil {
		return
	}
	go c.run(ctx)
	log.Infof("retention cleaner started (interval=%s)", c.interval)
}

func (c *RetentionCleaner) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.CleanupOnce(ctx)
		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

// CleanupOnce runs one retention sweep over both tables.
func (c *RetentionCleaner) CleanupOnce(ctx context.Context) {
	if c == nil || c.db == nil {
		return
	}
	c.sweep(ctx, "webhook_events", "received_at",
		c.retentionDays(ctx, settings.WebhookRetentionDaysKey, settings.DefaultWebhookRetentionDays))
	c.sweep(ctx, "audit_logs", "created_at",
		c.retentionDays(ctx, settings.AuditLogRetentionDaysKey, settings.DefaultAuditLogRetentionDays))
}

// retentionDays reads a retention window from settings; zero disables cleanup.
func (c *RetentionCleaner) retentionDays(ctx context.Context, key string, fallback int) int {
	if c.settings == nil {
		return fallback
	}
	raw := c.settings.GetDefault(ctx, key, strconv.Itoa(fallback))
	parsed, errParse := strconv.Atoi(strings.TrimSpace(raw))
	if errParse != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func (c *RetentionCleaner) sweep(ctx context.Context, table, timeColumn string, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deletedTotal := int64(0)
	for i := 0; i < maxDeleteBatchesPerRun; i++ {
		if ctx.Err() != nil {
			return
		}
		n, errDelete := c.deleteBatch(ctx, table, timeColumn, cutoff)
		if errDelete != nil {
			log.WithError(errDelete).Warnf("retention cleaner: delete batch from %s failed", table)
			break
		}
		if n <= 0 {
			break
		}
		deletedTotal += n
	}

	if deletedTotal > 0 {
		log.Infof("retention cleaner: deleted %d rows from %s (cutoff=%s retention_days=%d)",
			deletedTotal, table, cutoff.Format(time.RFC3339), retentionDays)
	}
}

func (c *RetentionCleaner) deleteBatch(ctx context.Context, table, timeColumn string, cutoff time.Time) (int64, error) {
	limit := c.batchSize
	if limit <= 0 {
		limit = defaultDeleteBatchSize
	}

	// Limited subquery keeps each delete short and avoids long table locks.
	keyColumn := "id"
	if table == "webhook_events" {
		keyColumn = "event_id"
	}
	res := c.db.WithContext(ctx).Exec(
		"DELETE FROM "+table+" WHERE "+keyColumn+" IN (SELECT "+keyColumn+" FROM "+table+
			" WHERE "+timeColumn+" < ? ORDER BY "+timeColumn+" ASC LIMIT ?)",
		cutoff, limit)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
