package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	dbutil "github.com/blikpay/checkout/internal/db"
	"github.com/blikpay/checkout/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ActorSystem labels entries written by the process itself.
const ActorSystem = "system"

// ActorCustomer labels entries triggered by unauthenticated checkout callers.
const ActorCustomer = "customer"

// ActorWebhook labels entries written by the payment-processor callback.
const ActorWebhook = "stripe_webhook"

// Entry describes one audit record to append.
type Entry struct {
	ActorID      *uint64 // Admin id when the actor is a known account.
	ActorName    string  // Actor label; defaults to "system" when empty.
	Action       string  // Action tag, one of the models.AuditAction constants.
	ResourceType string  // Affected resource kind.
	ResourceID   string  // Affected resource identifier.
	OldValue     string  // Snapshot before the change.
	NewValue     string  // Snapshot after the change.
	IPAddress    string  // Client IP when request-scoped.
	UserAgent    string  // Client User-Agent when request-scoped.
	Detail       string  // Free-text context.
}

// Filter selects audit entries for listing. Zero-valued fields are ignored.
type Filter struct {
	Action       string // Exact action tag match.
	ActorName    string // Exact actor name match.
	ResourceType string // Exact resource type match.
	Search       string // Case-insensitive substring over resource id and detail.
	Limit        int    // Page size, capped at 500.
	Offset       int    // Page offset.
}

// Recorder appends and queries the append-only audit log.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder constructs a Recorder backed by GORM.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one audit entry. Failures are logged, never fatal: an audit
// write must not take down the operation it documents.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.db == nil {
		return
	}
	actor := strings.TrimSpace(entry.ActorName)
	if actor == "" {
		actor = ActorSystem
	}
	row := models.AuditLog{
		ActorID:      entry.ActorID,
		ActorName:    actor,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Detail:       entry.Detail,
		CreatedAt:    time.Now().UTC(),
	}
	if errCreate := r.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).WithField("action", entry.Action).Error("audit: record entry")
	}
}

// List returns audit entries newest-first with the given filters applied,
// plus the total row count for the filter (ignoring paging).
func (r *Recorder) List(ctx context.Context, filter Filter) ([]models.AuditLog, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("audit: nil recorder")
	}

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorName != "" {
		query = query.Where("actor_name = ?", filter.ActorName)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := dbutil.NormalizeLikePattern(r.db, "%"+search+"%")
		query = query.Where(
			r.db.Where(dbutil.CaseInsensitiveLikeExpr(r.db, "resource_id"), pattern).
				Or(dbutil.CaseInsensitiveLikeExpr(r.db, "detail"), pattern),
		)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		return nil, 0, errCount
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.AuditLog
	if errFind := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; errFind != nil {
		return nil, 0, errFind
	}
	return rows, total, nil
}
