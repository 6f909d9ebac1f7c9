package handlers

import (
	"errors"
	"net/http"

	"github.com/blikpay/checkout/internal/checkout"
	"github.com/blikpay/checkout/internal/stripeapi"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler serves the public checkout endpoints.
type CheckoutHandler struct {
	service *checkout.Service
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// createSessionRequest defines the request body for session creation.
type createSessionRequest struct {
	Amount        int64  `json:"amount" binding:"required"`         // Amount in minor currency units.
	Currency      string `json:"currency" binding:"required"`       // Currency code.
	PaymentMethod string `json:"payment_method" binding:"required"` // Selected payment method.
}

// CreateSession validates the request, creates a pending order, and returns
// the hosted payment page URL.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var body createSessionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, errCreate := h.service.CreateSession(c.Request.Context(), checkout.CreateSessionParams{
		Amount:         body.Amount,
		Currency:       body.Currency,
		PaymentMethod:  body.PaymentMethod,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Meta: checkout.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		},
	})
	if errCreate != nil {
		status := http.StatusBadRequest
		var apiErr *stripeapi.APIError
		switch {
		case errors.Is(errCreate, checkout.ErrInvalidAmount),
			errors.Is(errCreate, checkout.ErrUnsupportedCurrency),
			errors.Is(errCreate, checkout.ErrInvalidPaymentMethod),
			errors.Is(errCreate, checkout.ErrMissingSecretKey):
			// 400 with the sentinel's message.
		case errors.As(errCreate, &apiErr):
			// Processor rejections surface as client errors too.
		default:
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": errCreate.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.RedirectURL, "order_id": result.OrderID})
}

// PaymentMethods returns the configured payment methods with display names.
func (h *CheckoutHandler) PaymentMethods(c *gin.Context) {
	methods := h.service.PaymentMethods(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

// Currencies returns the configured currencies with display metadata.
func (h *CheckoutHandler) Currencies(c *gin.Context) {
	currencies, defaultCurrency := h.service.Currencies(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"currencies": currencies, "default": defaultCurrency})
}

// activeMethodsQuery defines query parameters for the active-methods probe.
type activeMethodsQuery struct {
	Currency string `form:"currency"`             // Currency to probe; default currency when empty.
	Amount   int64  `form:"amount,default=2000"`  // Probe amount in minor units.
}

// ActivePaymentMethods probes the processor for active method types.
func (h *CheckoutHandler) ActivePaymentMethods(c *gin.Context) {
	var q activeMethodsQuery
	if errBind := c.ShouldBindQuery(&q); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	methods, errProbe := h.service.ActivePaymentMethods(c.Request.Context(), q.Currency, q.Amount)
	if errProbe != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errProbe.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_methods": methods,
		"currency":        q.Currency,
		"amount":          q.Amount,
	})
}
