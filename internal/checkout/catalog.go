package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/blikpay/checkout/internal/settings"
	log "github.com/sirupsen/logrus"
)

// PaymentMethodInfo describes one enabled payment method for discovery endpoints.
type PaymentMethodInfo struct {
	Code string `json:"code"` // Processor method code.
	Name string `json:"name"` // Display name.
}

// CurrencyInfo describes one enabled currency for discovery endpoints.
type CurrencyInfo struct {
	Code      string `json:"code"`       // Lowercase ISO code.
	Name      string `json:"name"`       // Display name.
	Symbol    string `json:"symbol"`     // Currency symbol.
	Position  string `json:"position"`   // Symbol position: "before" or "after" the amount.
	IsDefault bool   `json:"is_default"` // Whether this is the configured default.
}

// methodNames maps processor method codes to display names.
var methodNames = map[string]string{
	"card":                 "Credit/Debit Cards",
	"blik":                 "BLIK",
	"p24":                  "Przelewy24 (P24)",
	"bancontact":           "Bancontact",
	"ideal":                "iDEAL",
	"sofort":               "SOFORT",
	"giropay":              "Giropay",
	"eps":                  "EPS",
	"sepa_debit":           "SEPA Direct Debit",
	"sepa_credit_transfer": "SEPA Credit Transfer",
	"paypal":               "PayPal",
	"alipay":               "Alipay",
	"klarna":               "Klarna",
}

// currencyDetail holds display metadata for a currency code.
type currencyDetail struct {
	name     string
	symbol   string
	position string
}

// currencyDetails maps currency codes to display metadata.
var currencyDetails = map[string]currencyDetail{
	"pln": {"Polish Zloty", "zl", "after"},
	"usd": {"US Dollar", "$", "before"},
	"eur": {"Euro", "EUR", "before"},
	"gbp": {"British Pound", "GBP", "before"},
	"cad": {"Canadian Dollar", "C$", "before"},
	"aud": {"Australian Dollar", "A$", "before"},
	"chf": {"Swiss Franc", "CHF", "before"},
	"sek": {"Swedish Krona", "kr", "after"},
	"nok": {"Norwegian Krone", "kr", "after"},
	"dkk": {"Danish Krone", "kr", "after"},
}

// PaymentMethods returns the configured payment methods with display names.
// Unknown codes are passed through with the code as the name so newly enabled
// methods are never hidden.
func (s *Service) PaymentMethods(ctx context.Context) []PaymentMethodInfo {
	codes := s.settings.GetList(ctx, settings.PaymentMethodsKey, settings.DefaultPaymentMethods)
	out := make([]PaymentMethodInfo, 0, len(codes))
	for _, code := range codes {
		name, known := methodNames[code]
		if !known {
			name = code
		}
		out = append(out, PaymentMethodInfo{Code: code, Name: name})
	}
	return out
}

// Currencies returns the configured currencies with display metadata and the
// configured default currency code.
func (s *Service) Currencies(ctx context.Context) ([]CurrencyInfo, string) {
	codes := s.settings.GetList(ctx, settings.SupportedCurrenciesKey, settings.DefaultSupportedCurrencies)
	defaultCurrency := strings.ToLower(s.settings.GetDefault(ctx, settings.DefaultCurrencyKey, settings.DefaultDefaultCurrency))

	out := make([]CurrencyInfo, 0, len(codes))
	for _, code := range codes {
		detail, known := currencyDetails[code]
		if !known {
			detail = currencyDetail{name: strings.ToUpper(code), symbol: strings.ToUpper(code), position: "before"}
		}
		out = append(out, CurrencyInfo{
			Code:      code,
			Name:      detail.name,
			Symbol:    detail.symbol,
			Position:  detail.position,
			IsDefault: code == defaultCurrency,
		})
	}
	return out, defaultCurrency
}

// ActivePaymentMethods probes the processor for the method types it would
// activate for the given currency and amount. A temporary unconfirmed payment
// intent is created, its payment_method_types read, and the intent cancelled
// best-effort.
func (s *Service) ActivePaymentMethods(ctx context.Context, currency string, amount int64) ([]PaymentMethodInfo, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.settings.GetDefault(ctx, settings.DefaultCurrencyKey, settings.DefaultDefaultCurrency)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	secretKey, errKey := s.settings.Get(ctx, settings.StripeSecretKeyKey)
	if errKey != nil {
		return nil, ErrMissingSecretKey
	}

	intent, errProbe := s.stripe.CreatePaymentIntentProbe(ctx, secretKey, amount, currency)
	if errProbe != nil {
		return nil, fmt.Errorf("checkout: probe payment methods: %w", errProbe)
	}
	if errCancel := s.stripe.CancelPaymentIntent(ctx, secretKey, intent.ID); errCancel != nil {
		log.WithError(errCancel).WithField("intent", intent.ID).Warn("checkout: cancel probe intent")
	}

	out := make([]PaymentMethodInfo, 0, len(intent.PaymentMethodTypes))
	for _, code := range intent.PaymentMethodTypes {
		name, known := methodNames[code]
		if !known {
			name = code
		}
		out = append(out, PaymentMethodInfo{Code: code, Name: name})
	}
	return out, nil
}
