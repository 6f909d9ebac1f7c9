package security

import (
	"errors"
	"testing"
	"time"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, errGen := GenerateAdminToken("jwt-secret", 7, "admin", 30*time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	claims, errParse := ParseAdminToken("jwt-secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.AdminID != 7 || claims.Username != "admin" {
		t.Fatalf("unexpected claims: id=%d username=%q", claims.AdminID, claims.Username)
	}
	if claims.Subject != "admin" {
		t.Fatalf("expected subject bound to username, got %q", claims.Subject)
	}
}

func TestParseAdminTokenWrongSecret(t *testing.T) {
	t.Parallel()

	token, errGen := GenerateAdminToken("jwt-secret", 1, "admin", time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	if _, errParse := ParseAdminToken("other-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseAdminTokenExpired(t *testing.T) {
	t.Parallel()

	token, errGen := GenerateAdminToken("jwt-secret", 1, "admin", -time.Minute)
	if errGen != nil {
		t.Fatalf("generate token: %v", errGen)
	}

	if _, errParse := ParseAdminToken("jwt-secret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}
