package handlers

import (
	"io"
	"net/http"

	"github.com/blikpay/checkout/internal/checkout"
	"github.com/blikpay/checkout/internal/security"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/blikpay/checkout/internal/stripeapi"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 16

// WebhookHandler receives payment-outcome callbacks from the processor.
type WebhookHandler struct {
	settings   *settings.Store
	reconciler *checkout.Reconciler
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(store *settings.Store, reconciler *checkout.Reconciler) *WebhookHandler {
	return &WebhookHandler{settings: store, reconciler: reconciler}
}

// Receive verifies the event signature against the shared webhook secret and
// hands the event to the reconciler. Signature failures reject the request
// before any state is read or written.
func (h *WebhookHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, errRead := io.ReadAll(c.Request.Body)
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	secret, errSecret := h.settings.Get(c.Request.Context(), settings.StripeWebhookSecretKey)
	if errSecret != nil {
		log.Error("webhook: webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if errVerify := security.VerifyWebhookSignature(secret, signature, payload, security.DefaultSignatureTolerance); errVerify != nil {
		log.WithError(errVerify).Warn("webhook: signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook signature verification failed"})
		return
	}

	event, errParse := stripeapi.ParseEvent(payload)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	if _, errApply := h.reconciler.Apply(c.Request.Context(), event, payload); errApply != nil {
		log.WithError(errApply).WithField("event_id", event.ID).Error("webhook: apply event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
