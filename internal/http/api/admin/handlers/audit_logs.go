package handlers

import (
	"net/http"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/gin-gonic/gin"
)

// AuditLogsHandler serves the admin audit trail endpoint.
type AuditLogsHandler struct {
	audit *audit.Recorder
}

// NewAuditLogsHandler constructs an AuditLogsHandler.
func NewAuditLogsHandler(recorder *audit.Recorder) *AuditLogsHandler {
	return &AuditLogsHandler{audit: recorder}
}

// auditLogsQuery defines filters for the audit log listing.
type auditLogsQuery struct {
	Action       string `form:"action"`             // Exact action tag.
	Username     string `form:"username"`           // Exact actor name.
	ResourceType string `form:"resource_type"`      // Exact resource type.
	Search       string `form:"q"`                  // Substring over resource id and detail.
	Limit        int    `form:"limit,default=100"`  // Page size.
	Offset       int    `form:"offset,default=0"`   // Page offset.
}

// List returns audit entries newest-first with optional filters.
func (h *AuditLogsHandler) List(c *gin.Context) {
	var q auditLogsQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	rows, total, errList := h.audit.List(c.Request.Context(), audit.Filter{
		Action:       q.Action,
		ActorName:    q.Username,
		ResourceType: q.ResourceType,
		Search:       q.Search,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rows, "total": total})
}
