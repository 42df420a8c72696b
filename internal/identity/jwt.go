// Package identity verifies bearer tokens issued by the upstream identity
// provider and returns the external identity they carry.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns an opaque token into an external identity reference.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWTVerifier accepts HS256 tokens signed with a secret shared with the
// provider. The subject claim is the external identity.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Unauthorized("missing token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Unauthorized("token expired").Wrap(err)
		}
		return "", apperr.Unauthorized("invalid token").Wrap(err)
	}

	if claims.Subject == "" {
		return "", apperr.Unauthorized("token has no subject")
	}
	return claims.Subject, nil
}

// IssueToken signs a token the verifier accepts. Tests use it in place of
// the provider.
func IssueToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
