// Package front registers the public API surface: checkout, order reads, and
// the processor webhook receiver.
package front

import (
	"github.com/blikpay/checkout/internal/checkout"
	"github.com/blikpay/checkout/internal/http/api/front/handlers"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/gin-gonic/gin"
)

// RegisterFrontRoutes registers the public routes.
func RegisterFrontRoutes(r *gin.Engine, service *checkout.Service, reconciler *checkout.Reconciler, store *settings.Store) {
	if r == nil || service == nil {
		return
	}

	r.GET("/healthz", handlers.Health)

	checkoutHandler := handlers.NewCheckoutHandler(service)
	checkoutGroup := r.Group("/checkout")
	checkoutGroup.POST("/session", checkoutHandler.CreateSession)
	checkoutGroup.GET("/payment-methods", checkoutHandler.PaymentMethods)
	checkoutGroup.GET("/currencies", checkoutHandler.Currencies)
	checkoutGroup.GET("/active-payment-methods", checkoutHandler.ActivePaymentMethods)

	ordersHandler := handlers.NewOrdersHandler(service)
	r.GET("/orders", ordersHandler.List)
	r.GET("/orders/:id", ordersHandler.Get)

	webhookHandler := handlers.NewWebhookHandler(store, reconciler)
	r.POST("/stripe/webhook", webhookHandler.Receive)
}
