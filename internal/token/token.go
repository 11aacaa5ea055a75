// Package token issues and validates the signed admin tokens used for key
// management. Tokens are HS256 JWTs; the signing key comes from configuration
// and is shared by every instance.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "idverify/pkg/domain-errors"
)

const issuer = "idverify"

// Claims are the token claims. Role gates the administrative endpoints.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates admin tokens.
type Service struct {
	signingKey []byte
}

func NewService(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey)}
}

// Issue signs an admin token for subject, valid for expiresIn.
func (s *Service) Issue(subject string, expiresIn time.Duration) (string, error) {
	if subject == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}

	now := time.Now()
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ValidateCredential checks a presented token and returns its subject. It
// satisfies the auth middleware's CredentialValidator, so admin routes can be
// guarded the same way as API-key routes.
func (s *Service) ValidateCredential(_ context.Context, credential string) (string, error) {
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.Role != "admin" {
		return "", dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	return claims.Subject, nil
}
