// Package stripeapi is a minimal client for the Stripe REST API covering the
// endpoints the checkout flow needs: hosted checkout sessions and payment
// intent probes. Requests are form-encoded with an Idempotency-Key header.
package stripeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blikpay/checkout/internal/util"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production Stripe API endpoint.
const DefaultBaseURL = "https://api.stripe.com"

// defaultTimeout bounds a single API call.
const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the Stripe API.
type APIError struct {
	StatusCode int    // HTTP status code.
	Message    string // Error message from the response body.
	RequestID  string // Stripe request id for support lookups.
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("stripeapi: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the Stripe API. The secret key is resolved per call so that
// key rotations through the settings store take effect immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. An empty baseURL selects the production API.
func NewClient(baseURL string) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	return &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// CheckoutSessionParams describes a hosted checkout session to create.
type CheckoutSessionParams struct {
	Amount            int64  // Amount in minor currency units.
	Currency          string // Lowercase ISO currency code.
	PaymentMethod     string // Single payment method type to offer.
	ProductName       string // Display name on the hosted page.
	ClientReferenceID string // Order id carried through to webhook events.
	SuccessURL        string // Redirect after successful payment.
	CancelURL         string // Redirect after abandonment.
	IdempotencyKey    string // Dedupe key for retried requests.
}

// CheckoutSession is the subset of the session object the backend stores.
type CheckoutSession struct {
	ID  string `json:"id"`  // Session identifier.
	URL string `json:"url"` // Hosted payment page URL.
}

// CreateCheckoutSession creates a hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, secretKey string, params CheckoutSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[]", params.PaymentMethod)
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", params.ClientReferenceID)
	form.Set("payment_intent_data[metadata][order_id]", params.ClientReferenceID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	var session CheckoutSession
	if errPost := c.postForm(ctx, secretKey, "/v1/checkout/sessions", form, params.IdempotencyKey, &session); errPost != nil {
		return nil, errPost
	}
	return &session, nil
}

// PaymentIntent is the subset of the payment intent object used by probes.
type PaymentIntent struct {
	ID                 string   `json:"id"`                   // Intent identifier.
	PaymentMethodTypes []string `json:"payment_method_types"` // Method types Stripe activated.
}

// CreatePaymentIntentProbe creates an unconfirmed payment intent with
// automatic payment methods enabled, used to discover which method types are
// active for a currency/amount pair.
func (c *Client) CreatePaymentIntentProbe(ctx context.Context, secretKey string, amount int64, currency string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")

	var intent PaymentIntent
	if errPost := c.postForm(ctx, secretKey, "/v1/payment_intents", form, "", &intent); errPost != nil {
		return nil, errPost
	}
	return &intent, nil
}

// CancelPaymentIntent cancels a payment intent. Probe cleanup is best-effort;
// callers may ignore the error.
func (c *Client) CancelPaymentIntent(ctx context.Context, secretKey, intentID string) error {
	if strings.TrimSpace(intentID) == "" {
		return errors.New("stripeapi: empty intent id")
	}
	return c.postForm(ctx, secretKey, "/v1/payment_intents/"+url.PathEscape(intentID)+"/cancel", url.Values{}, "", nil)
}

// postForm issues a form-encoded POST and decodes the JSON response into out.
func (c *Client) postForm(ctx context.Context, secretKey, path string, form url.Values, idempotencyKey string, out any) error {
	if strings.TrimSpace(secretKey) == "" {
		return errors.New("stripeapi: empty secret key")
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if errReq != nil {
		return fmt.Errorf("stripeapi: build request: %w", errReq)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	log.WithFields(log.Fields{
		"path": path,
		"key":  util.HideAPIKey(secretKey),
	}).Debug("stripeapi: request")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("stripeapi: post %s: %w", path, errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	body, errRead := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if errRead != nil {
		return fmt.Errorf("stripeapi: read response: %w", errRead)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body),
			RequestID:  resp.Header.Get("Request-Id"),
		}
	}

	if out == nil {
		return nil
	}
	if errDecode := json.Unmarshal(body, out); errDecode != nil {
		return fmt.Errorf("stripeapi: decode response: %w", errDecode)
	}
	return nil
}

// extractErrorMessage pulls the message out of a Stripe error body.
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if errDecode := json.Unmarshal(body, &parsed); errDecode == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 512 {
		trimmed = trimmed[:512]
	}
	return trimmed
}
