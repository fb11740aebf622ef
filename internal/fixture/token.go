package fixture

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 12 * time.Hour

// Claims carries the operator identity inside the access token. The jti is
// checked against the account's current token id on every request, which is
// how a password change or re-login invalidates older tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the fixture's HS256 access tokens.
type TokenIssuer struct {
	signingKey []byte
}

func NewTokenIssuer(signingKey string) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey)}
}

// Issue returns a signed token and its id.
func (i *TokenIssuer) Issue(email string) (token string, tokenID string, err error) {
	tokenID = uuid.NewString()
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Issuer:    "traceguard-fixture",
		},
	})

	signed, err := t.SignedString(i.signingKey)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, tokenID, nil
}

// Validate parses and verifies a token, returning its claims.
func (i *TokenIssuer) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
