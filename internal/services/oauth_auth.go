package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/you/authwebsvc/domain"
)

// OAuthAuthImpl implements domain.OAuthService. It maps an externally
// verified identity onto a local account, auto-registering unknown emails
// with a pre-confirmed address and applying the same lockout accounting as
// password authentication for known ones.
type OAuthAuthImpl struct {
	userRepo     domain.UserRepository
	passwordAuth domain.PasswordAuthService
}

// NewOAuthAuth creates a new OAuth reconciler
func NewOAuthAuth(userRepo domain.UserRepository, passwordAuth domain.PasswordAuthService) domain.OAuthService {
	return &OAuthAuthImpl{
		userRepo:     userRepo,
		passwordAuth: passwordAuth,
	}
}

// AuthenticateOrRegister implements domain.OAuthService
func (s *OAuthAuthImpl) AuthenticateOrRegister(ctx context.Context, identity domain.ExternalIdentity) (*domain.AuthenticationResult, error) {
	result := &domain.AuthenticationResult{}

	if !identity.Succeeded {
		return result, nil
	}
	if identity.Email == "" {
		// Without an email claim there is no way to reconcile.
		return result, nil
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}

		// The provider already verified the address, so the account is
		// created with its email pre-confirmed and no password.
		credentials := domain.RegistrationCredentials{
			Email:    identity.Email,
			Username: identity.Name,
		}
		created, err := s.passwordAuth.Register(ctx, credentials, false)
		if err != nil {
			return nil, fmt.Errorf("failed to register oauth user: %w", err)
		}
		if !created.Succeeded || created.User == nil {
			log.Printf("Failed to create user: %s", created.Message)
			result.User = created.User
			return result, nil
		}

		result.User = created.User
		result.Succeeded = true
		result.IsEmailConfirmed = true
		return result, nil
	}

	result.User = user
	result.IsEmailConfirmed = user.EmailConfirmed
	result.IsLockedOut = user.IsLockedOut(time.Now())

	if result.IsEmailConfirmed && !result.IsLockedOut {
		// External success stands in for a correct password check.
		if err := s.userRepo.ResetAccessFailedCount(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to reset access failed count: %w", err)
		}
		result.Succeeded = true
		return result, nil
	}

	lockedOut, err := s.userRepo.AccessFailed(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record failed access: %w", err)
	}
	if lockedOut {
		result.IsLockedOut = true
	}
	return result, nil
}

var _ domain.OAuthService = (*OAuthAuthImpl)(nil)
