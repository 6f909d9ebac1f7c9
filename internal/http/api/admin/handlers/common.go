package handlers

import "github.com/gin-gonic/gin"

// Context keys set by the admin auth middleware.
const (
	// ContextAdminID carries the authenticated admin's id.
	ContextAdminID = "adminID"
	// ContextAdminName carries the authenticated admin's username.
	ContextAdminName = "adminName"
)

// adminFromContext reads the authenticated admin identity set by the
// middleware. Both values are nil/empty on unauthenticated routes.
func adminFromContext(c *gin.Context) (*uint64, string) {
	var adminID *uint64
	if raw, ok := c.Get(ContextAdminID); ok {
		if id, okCast := raw.(uint64); okCast {
			adminID = &id
		}
	}
	name := c.GetString(ContextAdminName)
	return adminID, name
}
