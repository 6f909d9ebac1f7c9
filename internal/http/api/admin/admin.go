// Package admin registers the administrative API surface: login, settings
// management, and the audit trail.
package admin

import (
	"net/http"
	"strings"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/config"
	"github.com/blikpay/checkout/internal/http/api/admin/handlers"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/security"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the admin routes. Everything except login
// requires a valid bearer token.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, store *settings.Store, recorder *audit.Recorder) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg, recorder)
	group.POST("/login", authHandler.Login)

	authed := group.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	settingsHandler := handlers.NewSettingsHandler(store)
	authed.GET("/settings", settingsHandler.List)
	authed.PUT("/settings/:key", settingsHandler.Update)

	auditHandler := handlers.NewAuditLogsHandler(recorder)
	authed.GET("/audit-logs", auditHandler.List)
}

// adminAuthMiddleware validates admin JWTs and resolves the subject to an
// active account on every request.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.AdminUser
		if errFind := db.WithContext(c.Request.Context()).Where("username = ?", claims.Username).First(&admin).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin account is disabled"})
			return
		}

		c.Set(handlers.ContextAdminID, admin.ID)
		c.Set(handlers.ContextAdminName, admin.Username)
		c.Next()
	}
}
