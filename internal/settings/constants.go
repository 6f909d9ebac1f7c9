package settings

// DB config keys and defaults for settings.
const (
	// StripeSecretKeyKey is the DB config key for the Stripe secret API key.
	StripeSecretKeyKey = "STRIPE_SECRET_KEY"
	// StripeWebhookSecretKey is the DB config key for the webhook signing secret.
	StripeWebhookSecretKey = "STRIPE_WEBHOOK_SECRET"
	// StripePublishableKeyKey is the DB config key for the Stripe publishable key.
	StripePublishableKeyKey = "STRIPE_PUBLISHABLE_KEY"
	// PaymentMethodsKey is the DB config key for enabled payment methods.
	PaymentMethodsKey = "PAYMENT_METHODS"
	// SupportedCurrenciesKey is the DB config key for enabled currencies.
	SupportedCurrenciesKey = "SUPPORTED_CURRENCIES"
	// DefaultCurrencyKey is the DB config key for the default currency.
	DefaultCurrencyKey = "DEFAULT_CURRENCY"
	// WebhookRetentionDaysKey is the DB config key for webhook ledger retention.
	WebhookRetentionDaysKey = "WEBHOOK_RETENTION_DAYS"
	// AuditLogRetentionDaysKey is the DB config key for audit log retention.
	AuditLogRetentionDaysKey = "AUDIT_LOG_RETENTION_DAYS"

	// DefaultPaymentMethods is the fallback enabled payment method list.
	DefaultPaymentMethods = "card,blik,p24,bancontact,ideal,sofort"
	// DefaultSupportedCurrencies is the fallback enabled currency list.
	DefaultSupportedCurrencies = "pln,usd,eur,gbp"
	// DefaultDefaultCurrency is the fallback default currency.
	DefaultDefaultCurrency = "pln"
	// DefaultWebhookRetentionDays is the fallback webhook ledger retention.
	DefaultWebhookRetentionDays = 90
	// DefaultAuditLogRetentionDays is the fallback audit log retention.
	DefaultAuditLogRetentionDays = 365
)

// defaultRow describes a settings row seeded on first startup.
type defaultRow struct {
	key         string
	value       string
	description string
}

// defaultRows lists the settings seeded when their keys are absent.
// Secret placeholders are seeded so operators can find and replace them.
var defaultRows = []defaultRow{
	{StripeSecretKeyKey, "sk_test_replace_me", "Stripe secret key"},
	{StripeWebhookSecretKey, "whsec_replace_me", "Stripe webhook signing secret"},
	{StripePublishableKeyKey, "pk_test_replace_me", "Stripe publishable key"},
	{PaymentMethodsKey, DefaultPaymentMethods, "Enabled payment methods (comma-separated: card,blik,p24,bancontact,ideal,sofort,giropay,eps,sepa_debit)"},
	{SupportedCurrenciesKey, DefaultSupportedCurrencies, "Enabled currencies (comma-separated: pln,usd,eur,gbp,cad,aud,chf,sek,nok,dkk)"},
	{DefaultCurrencyKey, DefaultDefaultCurrency, "Default currency (3-letter code)"},
	{WebhookRetentionDaysKey, "90", "Days to keep processed webhook event payloads (0 disables cleanup)"},
	{AuditLogRetentionDaysKey, "365", "Days to keep audit log entries (0 disables cleanup)"},
}
