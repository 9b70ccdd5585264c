package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lunchorder/order-system/internal/core/clock"
	"github.com/lunchorder/order-system/internal/core/domain"
)

const tokenIssuer = "lunch-order"

// tokenClaims is the signed payload. Expiry travels as an absolute RFC 3339
// instant in "expires" rather than the relative-friendly "exp" claim.
type tokenClaims struct {
	Permission int    `json:"permission"`
	Expires    string `json:"expires"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes HMAC-SHA256 session tokens.
type TokenCodec struct {
	key   []byte
	clock clock.Clock
}

func NewTokenCodec(key []byte, c clock.Clock) *TokenCodec {
	return &TokenCodec{key: key, clock: c}
}

// Issue signs a token for subject valid until now+ttl, truncated to the second.
func (c *TokenCodec) Issue(subject string, p domain.Permission, ttl time.Duration) (string, time.Time, error) {
	now := c.clock.Now()
	expiresAt := now.Add(ttl).UTC().Truncate(time.Second)

	claims := tokenClaims{
		Permission: int(p),
		Expires:    expiresAt.Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature and structure of raw. When the embedded
// expiry has passed it returns the claims together with domain.ErrTokenExpired.
func (c *TokenCodec) Decode(raw string) (domain.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrTokenSignatureInvalid, err)
		}
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	if tc.Subject == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}
	expiresAt, err := time.Parse(time.RFC3339, tc.Expires)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: expires: %v", domain.ErrTokenMalformed, err)
	}

	claims := domain.Claims{
		Subject:    tc.Subject,
		Permission: domain.Permission(tc.Permission),
		ExpiresAt:  expiresAt,
	}
	if claims.ExpiredAt(c.clock.Now()) {
		return claims, domain.ErrTokenExpired
	}
	return claims, nil
}
