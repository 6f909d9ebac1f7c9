// Package checkout implements the order lifecycle: session creation against
// the payment processor and webhook reconciliation of payment outcomes.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blikpay/checkout/internal/audit"
	"github.com/blikpay/checkout/internal/models"
	"github.com/blikpay/checkout/internal/settings"
	"github.com/blikpay/checkout/internal/stripeapi"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Validation and lookup errors surfaced to HTTP handlers.
var (
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("checkout: amount must be positive")
	// ErrUnsupportedCurrency indicates a currency outside the configured set.
	ErrUnsupportedCurrency = errors.New("checkout: unsupported currency")
	// ErrInvalidPaymentMethod indicates a payment method outside the configured set.
	ErrInvalidPaymentMethod = errors.New("checkout: invalid payment method")
	// ErrOrderNotFound indicates the requested order id does not exist.
	ErrOrderNotFound = errors.New("checkout: order not found")
	// ErrMissingSecretKey indicates no processor API key is configured.
	ErrMissingSecretKey = errors.New("checkout: stripe secret key not configured")
)

// maxOrderListLimit caps the public order listing page size.
const maxOrderListLimit = 50

// Service creates checkout sessions and reads orders. All configuration is
// read through the settings store per request.
type Service struct {
	db       *gorm.DB
	settings *settings.Store
	stripe   *stripeapi.Client
	audit    *audit.Recorder
	baseURL  string
}

// NewService constructs a checkout Service. baseURL is the public base URL
// used to build success/cancel redirect targets.
func NewService(db *gorm.DB, store *settings.Store, stripe *stripeapi.Client, recorder *audit.Recorder, baseURL string) *Service {
	return &Service{
		db:       db,
		settings: store,
		stripe:   stripe,
		audit:    recorder,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// RequestMeta carries client attribution recorded into audit entries.
type RequestMeta struct {
	IPAddress string // Client IP.
	UserAgent string // Client User-Agent.
}

// CreateSessionParams describes one checkout attempt.
type CreateSessionParams struct {
	Amount         int64       // Amount in minor currency units.
	Currency       string      // Currency code, any case.
	PaymentMethod  string      // Payment method code.
	IdempotencyKey string      // Client-supplied dedupe key; generated when empty.
	Meta           RequestMeta // Request attribution.
}

// CreateSessionResult is returned to the caller on success.
type CreateSessionResult struct {
	RedirectURL string // Hosted payment page URL.
	OrderID     uint64 // Newly created order id.
}

// CreateSession validates the request against the configured payment method
// and currency sets, creates a pending order, obtains a hosted session from
// the processor, and stores the returned session id on the order.
func (s *Service) CreateSession(ctx context.Context, params CreateSessionParams) (CreateSessionResult, error) {
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	method := strings.TrimSpace(params.PaymentMethod)

	if params.Amount <= 0 {
		return CreateSessionResult{}, ErrInvalidAmount
	}

	currencies := s.settings.GetList(ctx, settings.SupportedCurrenciesKey, settings.DefaultSupportedCurrencies)
	if !contains(currencies, currency) {
		s.audit.Record(ctx, audit.Entry{
			ActorName:    audit.ActorCustomer,
			Action:       models.AuditActionPaymentAttemptFailed,
			ResourceType: models.AuditResourceOrder,
			IPAddress:    params.Meta.IPAddress,
			UserAgent:    params.Meta.UserAgent,
			Detail:       fmt.Sprintf("Unsupported currency: %s. Supported: %s", currency, strings.Join(currencies, ", ")),
		})
		return CreateSessionResult{}, ErrUnsupportedCurrency
	}

	methods := s.settings.GetList(ctx, settings.PaymentMethodsKey, settings.DefaultPaymentMethods)
	if !contains(methods, method) {
		s.audit.Record(ctx, audit.Entry{
			ActorName:    audit.ActorCustomer,
			Action:       models.AuditActionPaymentAttemptFailed,
			ResourceType: models.AuditResourceOrder,
			IPAddress:    params.Meta.IPAddress,
			UserAgent:    params.Meta.UserAgent,
			Detail:       fmt.Sprintf("Invalid payment method: %s. Available methods: %s", method, strings.Join(methods, ", ")),
		})
		return CreateSessionResult{}, ErrInvalidPaymentMethod
	}

	order := models.Order{
		Amount:   params.Amount,
		Currency: currency,
		Status:   models.OrderStatusPending,
	}
	if errCreate := s.db.WithContext(ctx).Create(&order).Error; errCreate != nil {
		return CreateSessionResult{}, fmt.Errorf("checkout: create order: %w", errCreate)
	}

	secretKey, errKey := s.settings.Get(ctx, settings.StripeSecretKeyKey)
	if errKey != nil {
		s.recordAttemptFailure(ctx, order.ID, params.Meta, "Stripe secret key not configured")
		return CreateSessionResult{}, ErrMissingSecretKey
	}

	idemKey := strings.TrimSpace(params.IdempotencyKey)
	if idemKey == "" {
		idemKey = fmt.Sprintf("checkout-%d-%s", order.ID, uuid.NewString())
	}

	session, errSession := s.stripe.CreateCheckoutSession(ctx, secretKey, stripeapi.CheckoutSessionParams{
		Amount:            order.Amount,
		Currency:          order.Currency,
		PaymentMethod:     method,
		ProductName:       fmt.Sprintf("Order #%d", order.ID),
		ClientReferenceID: fmt.Sprintf("%d", order.ID),
		SuccessURL:        fmt.Sprintf("%s/success?order_id=%d&sid={CHECKOUT_SESSION_ID}", s.baseURL, order.ID),
		CancelURL:         fmt.Sprintf("%s/cancel?order_id=%d", s.baseURL, order.ID),
		IdempotencyKey:    idemKey,
	})
	if errSession != nil {
		s.recordAttemptFailure(ctx, order.ID, params.Meta, fmt.Sprintf("Processor error during session creation: %v", errSession))
		return CreateSessionResult{}, fmt.Errorf("checkout: create session: %w", errSession)
	}

	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("stripe_session_id", session.ID).Error; errUpdate != nil {
		return CreateSessionResult{}, fmt.Errorf("checkout: store session id: %w", errUpdate)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorName:    audit.ActorCustomer,
		Action:       models.AuditActionPaymentAttemptCreated,
		ResourceType: models.AuditResourceOrder,
		ResourceID:   fmt.Sprintf("%d", order.ID),
		IPAddress:    params.Meta.IPAddress,
		UserAgent:    params.Meta.UserAgent,
		Detail: fmt.Sprintf("Payment session created for order #%d. Amount: %d %s, Method: %s, Session: %s",
			order.ID, order.Amount, strings.ToUpper(order.Currency), method, session.ID),
	})
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"session":  session.ID,
		"method":   method,
		"amount":   order.Amount,
		"currency": order.Currency,
	}).Info("checkout: created session")

	return CreateSessionResult{RedirectURL: session.URL, OrderID: order.ID}, nil
}

// recordAttemptFailure audits a failure that happened after the order row existed.
func (s *Service) recordAttemptFailure(ctx context.Context, orderID uint64, meta RequestMeta, detail string) {
	s.audit.Record(ctx, audit.Entry{
		ActorName:    audit.ActorCustomer,
		Action:       models.AuditActionPaymentAttemptFailed,
		ResourceType: models.AuditResourceOrder,
		ResourceID:   fmt.Sprintf("%d", orderID),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		Detail:       detail,
	})
}

// GetOrder returns one order by id.
func (s *Service) GetOrder(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	errFind := s.db.WithContext(ctx).First(&order, id).Error
	switch {
	case errFind == nil:
		return &order, nil
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		return nil, ErrOrderNotFound
	default:
		return nil, fmt.Errorf("checkout: get order %d: %w", id, errFind)
	}
}

// ListOrders returns the most recent orders, newest first.
func (s *Service) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit < 1 || limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}
	var orders []models.Order
	if errFind := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error; errFind != nil {
		return nil, fmt.Errorf("checkout: list orders: %w", errFind)
	}
	return orders, nil
}

// contains reports membership in a small string slice.
func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
