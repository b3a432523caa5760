package app

import (
	"strings"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	tokens, err := NewTokenIssuer("secret")
	if err != nil {
		t.Fatal(err)
	}

	raw, err := tokens.Issue("alice@example.com", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != "alice@example.com" {
		t.Errorf("expected subject alice@example.com, got %s", sub)
	}
}

func TestTokenIssuer_Expiry(t *testing.T) {
	tokens, _ := NewTokenIssuer("secret")
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue("alice@example.com", 0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{"just issued", issued, false},
		{"one second before expiry", issued.Add(DefaultTokenTTL - time.Second), false},
		{"exactly at expiry", issued.Add(DefaultTokenTTL), true},
		{"long after", issued.Add(24 * time.Hour), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens.now = func() time.Time { return tc.at }
			_, err := tokens.Verify(raw)
			if tc.expired && !IsAuthKind(err, AuthExpired) {
				t.Errorf("expected expired, got %v", err)
			}
			if !tc.expired && err != nil {
				t.Errorf("expected valid token, got %v", err)
			}
		})
	}
}

func TestTokenIssuer_InvalidSignature(t *testing.T) {
	tokens, _ := NewTokenIssuer("secret")
	other, _ := NewTokenIssuer("another-secret")

	raw, _ := other.Issue("alice@example.com", time.Minute)

	parts := strings.Split(raw, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	for name, tok := range map[string]string{
		"foreign key": raw,
		"tampered":    tampered,
		"garbage":     "not-a-token",
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(tok)
			if !IsAuthKind(err, AuthInvalidSignature) {
				t.Errorf("expected invalid signature, got %v", err)
			}
		})
	}
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	if _, err := NewTokenIssuer(""); err == nil {
		t.Error("expected error for empty secret")
	}
}
