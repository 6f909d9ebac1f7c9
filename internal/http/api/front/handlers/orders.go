package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blikpay/checkout/internal/checkout"
	"github.com/gin-gonic/gin"
)

// OrdersHandler serves the public order read endpoints.
type OrdersHandler struct {
	service *checkout.Service
}

// NewOrdersHandler constructs an OrdersHandler.
func NewOrdersHandler(service *checkout.Service) *OrdersHandler {
	return &OrdersHandler{service: service}
}

// List returns the most recent orders, newest first.
func (h *OrdersHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, errList := h.service.ListOrders(c.Request.Context(), limit)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get returns one order by id.
func (h *OrdersHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, errGet := h.service.GetOrder(c.Request.Context(), id)
	if errGet != nil {
		if errors.Is(errGet, checkout.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	c.JSON(http.StatusOK, order)
}
