package util

import "strings"

// HideAPIKey obscures an API key for logging purposes, showing only the first and last few characters.
func HideAPIKey(apiKey string) string {
	if len(apiKey) > 8 {
		return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
	} else if len(apiKey) > 4 {
		return apiKey[:2] + "..." + apiKey[len(apiKey)-2:]
	} else if len(apiKey) > 2 {
		return apiKey[:1] + "..." + apiKey[len(apiKey)-1:]
	}
	return apiKey
}

// IsSecretSettingKey reports whether a settings key holds credential material
// that must be masked in listings and logs.
func IsSecretSettingKey(key string) bool {
	upper := strings.ToUpper(strings.TrimSpace(key))
	return strings.HasSuffix(upper, "_SECRET") ||
		strings.HasSuffix(upper, "_SECRET_KEY") ||
		strings.HasSuffix(upper, "_API_KEY") ||
		strings.HasSuffix(upper, "_TOKEN") ||
		upper == "STRIPE_SECRET_KEY" ||
		upper == "STRIPE_WEBHOOK_SECRET"
}
