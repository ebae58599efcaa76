// Package auth issues and verifies the bearer tokens the API accepts. The
// middleware consumes the Provider interface, so a hosted identity service
// can replace the local JWT implementation without touching handlers.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims adds the stable user id to the registered JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// Provider verifies a bearer token and returns the user id it belongs to.
type Provider interface {
	Verify(ctx context.Context, token string) (string, error)
}

func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// JWTProvider verifies HS256 tokens signed with a shared secret.
type JWTProvider struct {
	secretKey []byte
}

func NewJWTProvider(secretKey []byte) *JWTProvider {
	return &JWTProvider{secretKey: secretKey}
}

func (p *JWTProvider) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
