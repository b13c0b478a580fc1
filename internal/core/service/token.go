package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tesloshop/shop-auth/internal/core/domain"
)

// TokenTTL is the fixed validity window of every issued token.
const TokenTTL = 2 * time.Hour

// TokenCodec signs and verifies HS256 tokens that carry only the subject id.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec bound to the process-wide secret.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec: empty signing secret")
	}
	return &TokenCodec{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Issue signs a token for subject valid for TokenTTL from now.
func (c *TokenCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token codec: empty subject")
	}
	issued := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject verifies signature and expiry and returns the subject id. Every
// failure is reported as domain.ErrInvalidToken.
func (c *TokenCodec) Subject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
