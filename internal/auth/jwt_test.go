package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	sessionID := "session-123"

	tokenString, err := GenerateWidgetToken(sessionID)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if tokenString == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.SessionID != sessionID {
		t.Errorf("Expected session ID %s, got %s", sessionID, claims.SessionID)
	}

	if claims.Role != "widget" {
		t.Errorf("Expected role widget, got %s", claims.Role)
	}

	if claims.ExpiresAt == nil {
		t.Fatal("Expected expiry to be set")
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > widgetTokenTTL {
		t.Errorf("Expected expiry within %v, got %v remaining", widgetTokenTTL, remaining)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	claims := &JWTClaims{
		SessionID: "session-123",
		Role:      "widget",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ValidateToken(tokenString); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := &JWTClaims{
		SessionID: "session-123",
		Role:      "widget",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JWTSecret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ValidateToken(tokenString); err == nil {
		t.Error("Expected error for expired token")
	}
}
