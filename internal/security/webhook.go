package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook signature errors.
var (
	// ErrInvalidSignature indicates a missing, malformed, or mismatched signature header.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrSignatureExpired indicates the signed timestamp is outside the accepted tolerance.
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// DefaultSignatureTolerance bounds the accepted age of a signed payload.
const DefaultSignatureTolerance = 5 * time.Minute

// ComputeWebhookSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>"
// under the shared webhook secret. This is the scheme the payment processor
// uses for its Stripe-Signature header (v1 signatures).
func ComputeWebhookSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignWebhookPayload builds a complete signature header value for a payload.
// Used by tests and tooling that emit signed events.
func SignWebhookPayload(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeWebhookSignature(secret, timestamp, payload))
}

// VerifyWebhookSignature checks a "t=...,v1=..." signature header against the
// payload and shared secret. The signed timestamp must be within tolerance of
// now. Verification failure means the request must be rejected before any
// state is touched.
func VerifyWebhookSignature(secret, header string, payload []byte, tolerance time.Duration) error {
	if strings.TrimSpace(secret) == "" {
		return ErrInvalidSignature
	}
	timestamp, signatures, errParse := parseSignatureHeader(header)
	if errParse != nil {
		return errParse
	}

	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}
	age := time.Since(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return ErrSignatureExpired
	}

	expected := ComputeWebhookSignature(secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// parseSignatureHeader extracts the timestamp and v1 signatures from a header.
func parseSignatureHeader(header string) (int64, []string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, nil, ErrInvalidSignature
	}

	var (
		timestamp  int64
		seenTS     bool
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, errParse := strconv.ParseInt(kv[1], 10, 64)
			if errParse != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = parsed
			seenTS = true
		case "v1":
			if kv[1] != "" {
				signatures = append(signatures, kv[1])
			}
		}
	}
	if !seenTS || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
