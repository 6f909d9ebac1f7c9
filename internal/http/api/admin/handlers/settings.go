package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/blikpay/checkout/internal/util"
	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the admin settings endpoints.
type SettingsHandler struct {
	settings *settings.Store
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: store}
}

// settingResponse is the wire form of a settings row.
type settingResponse struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description string  `json:"description"`
	UpdatedAt   string  `json:"updated_at"`
	UpdatedBy   *uint64 `json:"updated_by"`
}

// toSettingResponse converts a row, masking secret values unless revealed.
func toSettingResponse(row models.Setting, reveal bool) settingResponse {
	value := row.Value
	if !reveal && util.IsSecretSettingKey(row.Key) {
		value = util.HideAPIKey(value)
	}
	return settingResponse{
		Key:         row.Key,
		Value:       value,
		Description: row.Description,
		UpdatedAt:   row.UpdatedAt.UTC().Format(time.RFC3339),
		UpdatedBy:   row.UpdatedBy,
	}
}

// List returns all settings rows. Secret values are masked unless
// reveal=true is passed.
func (h *SettingsHandler) List(c *gin.Context) {
	rows, errList := h.settings.List(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list settings"})
		return
	}

	reveal := c.Query("reveal") == "true"
	out := make([]settingResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSettingResponse(row, reveal))
	}
	c.JSON(http.StatusOK, out)
}

// updateSettingRequest defines the request body for a settings write.
type updateSettingRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Update upserts one settings row and audits the change.
func (h *SettingsHandler) Update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "setting key is required"})
		return
	}

	var body updateSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	adminID, adminName := adminFromContext(c)
	row, errSet := h.settings.Set(c.Request.Context(), key, body.Value, settings.SetParams{
		Description: body.Description,
		ActorID:     adminID,
		ActorName:   adminName,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if errSet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting"})
		return
	}

	c.JSON(http.StatusOK, toSettingResponse(row, true))
}
