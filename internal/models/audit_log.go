package models

import "time"

// Audit action tags. Every state-changing operation writes exactly one entry
// with one of these actions.
const (
	// AuditActionLoginSuccess records a successful admin login.
	AuditActionLoginSuccess = "login_success"
	// AuditActionLoginFailed records a rejected admin login attempt.
	AuditActionLoginFailed = "login_failed"
	// AuditActionSettingCreate records creation of a new settings row.
	AuditActionSettingCreate = "setting_create"
	// AuditActionSettingUpdate records an update to an existing settings row.
	AuditActionSettingUpdate = "setting_update"
	// AuditActionAdminInit records the one-time bootstrap of the admin account.
	AuditActionAdminInit = "admin_init"
	// AuditActionPaymentAttemptCreated records a checkout session handed to the processor.
	AuditActionPaymentAttemptCreated = "payment_attempt_created"
	// AuditActionPaymentAttemptFailed records a checkout attempt that never reached the processor or was rejected by it.
	AuditActionPaymentAttemptFailed = "payment_attempt_failed"
	// AuditActionPaymentCompleted records a paid order transition.
	AuditActionPaymentCompleted = "payment_completed"
	// AuditActionPaymentFailed records a failed order transition.
	AuditActionPaymentFailed = "payment_failed"
	// AuditActionPaymentSessionExpired records an expired order transition.
	AuditActionPaymentSessionExpired = "payment_session_expired"
)

// Audit resource types.
const (
	// AuditResourceSetting marks entries about a settings row.
	AuditResourceSetting = "setting"
	// AuditResourceUser marks entries about an admin account.
	AuditResourceUser = "user"
	// AuditResourceOrder marks entries about an order.
	AuditResourceOrder = "order"
	// AuditResourceSystem marks entries about process-level events.
	AuditResourceSystem = "system"
)

// AuditLog is an append-only record of a state-changing action.
// Rows are never updated or deleted.
type AuditLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	ActorID   *uint64 `gorm:"index" json:"actor_id"`                            // Admin id when the actor is a known account.
	ActorName string  `gorm:"type:varchar(128);not null;index" json:"username"` // Actor label (admin username, "customer", "stripe_webhook", "system").

	Action       string `gorm:"type:varchar(64);not null;index" json:"action"`        // Action tag.
	ResourceType string `gorm:"type:varchar(64);not null;index" json:"resource_type"` // Affected resource kind.
	ResourceID   string `gorm:"type:varchar(255)" json:"resource_id"`                 // Affected resource identifier (setting key, order id, username).

	OldValue string `gorm:"type:text" json:"old_value"` // Snapshot before the change.
	NewValue string `gorm:"type:text" json:"new_value"` // Snapshot after the change.

	IPAddress string `gorm:"type:varchar(64)" json:"ip_address"` // Client IP when the action came from a request.
	UserAgent string `gorm:"type:text" json:"user_agent"`        // Client User-Agent when available.

	Detail string `gorm:"type:text" json:"details"` // Free-text context.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"` // Entry timestamp.
}
