package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idverify/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key")

	signed, err := svc.Issue("ops@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	subject, err := svc.ValidateCredential(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", subject)
}

func TestIssueRequiresSubject(t *testing.T) {
	svc := NewService("test-signing-key")

	_, err := svc.Issue("", time.Hour)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestValidateRejections(t *testing.T) {
	ctx := context.Background()
	svc := NewService("test-signing-key")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateCredential(ctx, "not-a-token")
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		signed, err := NewService("another-key").Issue("ops@example.com", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateCredential(ctx, signed)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		signed, err := svc.Issue("ops@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateCredential(ctx, signed)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := Claims{
			Role: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops@example.com",
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = svc.ValidateCredential(ctx, signed)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("missing admin role", func(t *testing.T) {
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops@example.com",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = svc.ValidateCredential(ctx, signed)
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	})
}
