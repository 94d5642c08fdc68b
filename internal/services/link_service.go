package services

import (
	"context"
	"errors"

	apperrors "dolfin/internal/errors"
	"dolfin/internal/logger"
	"dolfin/internal/provider"
)

// linkService owns the provider-identity state transitions for a user:
// unlinked (null provider account id) to linked (id set, immutable after).
// There is no durable in-between state; a crash after the remote account is
// created but before the local write orphans the remote account, which is
// logged and not recovered.
type linkService struct {
	users    UserServicer
	provider provider.Client
}

// NewLinkService creates a new LinkServicer.
func NewLinkService(users UserServicer, providerClient provider.Client) LinkServicer {
	return &linkService{users: users, provider: providerClient}
}

// RegisterProviderIdentity registers the user with the remote provider and
// records the assigned account id. The remote call happens outside any store
// transaction; callers serialize registration per user since the final write
// is last-write-wins.
func (s *linkService) RegisterProviderIdentity(ctx context.Context, userID uint) (string, error) {
	profile, err := s.users.GetUserProfile(userID)
	if err != nil {
		return "", err
	}

	// The link is one-shot; no re-registration path exists.
	if _, err := s.users.GetProviderAccountID(userID); err == nil {
		return "", apperrors.ErrAlreadyLinked
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	accountID, err := s.provider.CreateAccount(ctx, *profile)
	if err != nil {
		return "", err
	}

	if err := s.users.SetProviderAccountID(userID, accountID); err != nil {
		// The user vanished between the remote call and the write. The
		// remote account has no local owner now; log it and fail the whole
		// operation.
		logger.Get().Errorw("provider account orphaned: local write failed after remote creation",
			"user_id", userID,
			"provider_account_id", accountID,
			"error", err.Error(),
		)
		return "", err
	}

	return accountID, nil
}

// BuildAccountLinkURL returns the provider's public authorization URL for an
// already-linked user. Presentation of the URL is the caller's concern.
func (s *linkService) BuildAccountLinkURL(ctx context.Context, userID uint) (string, error) {
	accountID, err := s.users.GetProviderAccountID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrNotLinked
		}
		return "", err
	}
	return s.provider.CreateAuthLink(ctx, accountID)
}
