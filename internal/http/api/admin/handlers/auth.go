package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/config"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
	audit  *audit.Recorder
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, audit: recorder}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and issues a bearer token. Every failed
// attempt writes a login_failed audit entry with the attempted username.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()

	var admin models.AdminUser
	errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		h.recordLoginFailure(c, username, "Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !security.CheckPassword(admin.PasswordHash, password) {
		h.recordLoginFailure(c, username, "Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !admin.Active {
		h.recordLoginFailure(c, username, "Account is disabled")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account is disabled"})
		return
	}

	token, errToken := security.GenerateAdminToken(h.jwtCfg.Secret, admin.ID, admin.Username, h.jwtCfg.Expiry())
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.audit.Record(ctx, audit.Entry{
		ActorID:      &admin.ID,
		ActorName:    admin.Username,
		Action:       models.AuditActionLoginSuccess,
		ResourceType: models.AuditResourceUser,
		ResourceID:   admin.Username,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// recordLoginFailure writes a login_failed audit entry for an attempt.
func (h *AuthHandler) recordLoginFailure(c *gin.Context, username, detail string) {
	h.audit.Record(c.Request.Context(), audit.Entry{
		ActorName:    username,
		Action:       models.AuditActionLoginFailed,
		ResourceType: models.AuditResourceUser,
		ResourceID:   username,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Detail:       detail,
	})
}
