package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries the identity fields the auth provider puts in its
// tokens. Only the subject, role, name and email are consumed here.
type CustomClaims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies an access token issued by the external
// auth service. Verification uses the provider's JWKS endpoint when jwksURL
// is set, otherwise the shared HMAC secret.
func ValidateToken(tokenStr, jwksURL, secret string) (*CustomClaims, error) {
	if jwksURL != "" {
		// Create a context with timeout for the JWKS request
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			Ctx: ctx,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %v", err)
		}
		defer jwks.EndBackground()

		token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
		if err != nil {
			return nil, fmt.Errorf("token validation failed: %v", err)
		}

		claims, ok := token.Claims.(*CustomClaims)
		if !ok || !token.Valid {
			return nil, errors.New("invalid or expired token")
		}
		return claims, nil
	}

	if secret == "" {
		return nil, errors.New("no JWKS URL or JWT secret configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}
