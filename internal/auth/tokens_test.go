package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pyqvault/pyqvault/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParseToken(t *testing.T) {
	token, expiresAt, err := auth.IssueToken(testSecret, "admin", 24*time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if remaining := time.Until(expiresAt); remaining < 23*time.Hour {
		t.Errorf("expiry too soon: %v remaining", remaining)
	}

	claims, err := auth.ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q, want admin", claims.Username)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := auth.IssueToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := auth.ParseToken("another-secret-another-secret-00", token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := auth.IssueToken(testSecret, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := auth.ParseToken(testSecret, token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := auth.ParseToken(testSecret, "not.a.token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, _, err := auth.IssueToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tampered := strings.Replace(token, ".", ".x", 1)
	if _, err := auth.ParseToken(testSecret, tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
