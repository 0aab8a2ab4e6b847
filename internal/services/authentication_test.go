package services

import (
	"testing"

	"flagquiz/internal/models"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	if err != nil {
		t.Fatalf("NewAuthentication: %v", err)
	}

	user := &models.AuthUser{ID: 42, Username: "mapmaster", EmailVerified: true}
	token, err := authentication.CreateToken(user)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	got, err := authentication.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if got.ID != user.ID || got.Username != user.Username || got.EmailVerified != user.EmailVerified {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, user)
	}
}

func TestAuthenticationRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewAuthentication("secret-a")
	verifier, _ := NewAuthentication("secret-b")

	token, err := issuer.CreateToken(&models.AuthUser{ID: 1, Username: "someone"})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestAuthenticationRejectsGarbage(t *testing.T) {
	authentication, _ := NewAuthentication("test-secret")
	if _, err := authentication.Validate("not-a-token"); err == nil {
		t.Error("expected validation to fail for malformed token")
	}
}

func TestNewAuthenticationEmptySecret(t *testing.T) {
	if _, err := NewAuthentication(""); err == nil {
		t.Error("expected error for empty secret")
	}
}
