package apikey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/secrets"
	"idverify/pkg/platform/sentinel"
	"idverify/pkg/requestcontext"
)

// Service issues and validates API keys. It satisfies the auth middleware's
// CredentialValidator.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Issue creates a key for owner and returns the plaintext credential. The
// plaintext is shown exactly once; only its hash is stored.
func (s *Service) Issue(ctx context.Context, owner, name string) (string, Key, error) {
	if owner == "" || name == "" {
		return "", Key{}, dErrors.New(dErrors.CodeInvalidInput, "owner and name are required")
	}
	if !govalidator.IsEmail(owner) {
		return "", Key{}, dErrors.New(dErrors.CodeInvalidInput, "owner must be an email address")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return "", Key{}, err
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return "", Key{}, err
	}

	key := Key{
		ID:         uuid.NewString(),
		Name:       name,
		Owner:      owner,
		SecretHash: hash,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Add(ctx, key); err != nil {
		return "", Key{}, fmt.Errorf("store api key: %w", err)
	}

	s.logger.InfoContext(ctx, "api key issued",
		"request_id", requestcontext.RequestID(ctx),
		"key_id", key.ID,
		"owner", owner)
	return keyPrefix + key.ID + "." + secret, key, nil
}

// ValidateCredential checks a presented credential and returns the key name
// as the acting principal. Unknown, malformed and revoked keys all fail the
// same way so callers cannot probe for key IDs.
func (s *Service) ValidateCredential(ctx context.Context, credential string) (string, error) {
	id, secret, ok := splitCredential(credential)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}

	key, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}
	if err != nil {
		return "", fmt.Errorf("load api key: %w", err)
	}

	if key.Revoked {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}
	if err := secrets.Verify(secret, key.SecretHash); err != nil {
		return "", err
	}
	return key.Name, nil
}

// Revoke permanently disables a key. Revocation is idempotent.
func (s *Service) Revoke(ctx context.Context, id string) error {
	key, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "api key not found")
	}
	if err != nil {
		return fmt.Errorf("load api key: %w", err)
	}
	if key.Revoked {
		return nil
	}

	now := requestcontext.Now(ctx)
	key.Revoked = true
	key.RevokedAt = &now
	if err := s.store.Update(ctx, key); err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}

	s.logger.InfoContext(ctx, "api key revoked",
		"request_id", requestcontext.RequestID(ctx),
		"key_id", id)
	return nil
}

// List returns the client-visible view of every key.
func (s *Service) List(ctx context.Context) ([]Public, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	out := make([]Public, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.Public())
	}
	return out, nil
}
