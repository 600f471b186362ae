package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the claims in a widget session token
type JWTClaims struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"` // always "widget"
	jwt.RegisteredClaims
}

// widgetTokenTTL bounds how long a widget may keep its socket credential.
const widgetTokenTTL = 1 * time.Hour

// JWTSecret signs widget session tokens. Loaded from WIDGET_JWT_SECRET; the
// fallback only exists so local development works without a .env file.
var JWTSecret = secretFromEnv()

func secretFromEnv() []byte {
	if secret := os.Getenv("WIDGET_JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("dev-only-widget-secret")
}

// GenerateWidgetToken generates a short-lived JWT token for a widget session
func GenerateWidgetToken(sessionID string) (string, error) {
	claims := &JWTClaims{
		SessionID: sessionID,
		Role:      "widget",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(widgetTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
