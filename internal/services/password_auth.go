package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/you/authwebsvc/domain"
)

const minPasswordLength = 8

// PasswordAuthImpl implements domain.PasswordAuthService
type PasswordAuthImpl struct {
	userRepo        domain.UserRepository
	passwordSvc     domain.PasswordService
	notificationSvc domain.NotificationService
	baseURL         string
}

// NewPasswordAuth creates a new password authenticator. baseURL is the
// public origin used to compose password-recovery links.
func NewPasswordAuth(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	notificationSvc domain.NotificationService,
	baseURL string,
) domain.PasswordAuthService {
	return &PasswordAuthImpl{
		userRepo:        userRepo,
		passwordSvc:     passwordSvc,
		notificationSvc: notificationSvc,
		baseURL:         strings.TrimRight(baseURL, "/"),
	}
}

// Authenticate implements domain.PasswordAuthService. An unknown email
// yields a bare failed result with no flags set, so nothing about account
// existence leaks. Unconfirmed or locked-out accounts are rejected before
// any hash computation.
func (s *PasswordAuthImpl) Authenticate(ctx context.Context, credentials domain.PasswordCredentials) (*domain.AuthenticationResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return &domain.AuthenticationResult{}, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	result := &domain.AuthenticationResult{
		User:             user,
		IsEmailConfirmed: user.EmailConfirmed,
		IsLockedOut:      user.IsLockedOut(time.Now()),
	}

	if !result.IsEmailConfirmed || result.IsLockedOut {
		return result, nil
	}

	if s.passwordSvc.Verify(user.PasswordHash, credentials.Password) {
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

// Register implements domain.PasswordAuthService. Store-level rejections
// are aggregated into the result message; confirmation token issuance is
// the OTP authenticator's job, not this method's.
func (s *PasswordAuthImpl) Register(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error) {
	username := DeriveUsername(credentials.Username, credentials.Email)

	var problems []string
	if credentials.Email == "" {
		problems = append(problems, "Email is required.")
	}

	passwordHash := ""
	if credentials.Password != "" {
		if len(credentials.Password) < minPasswordLength {
			problems = append(problems, fmt.Sprintf("Passwords must be at least %d characters.", minPasswordLength))
		} else {
			hash, err := s.passwordSvc.Hash(credentials.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			passwordHash = hash
		}
	}

	if len(problems) > 0 {
		return &domain.RegistrationResult{
			Succeeded:            false,
			RequiresVerification: requiresVerification,
			Message:              strings.Join(problems, "\n"),
		}, nil
	}

	user := &domain.User{
		Email:          credentials.Email,
		Username:       username,
		PasswordHash:   passwordHash,
		EmailConfirmed: !requiresVerification,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return &domain.RegistrationResult{
				Succeeded:            false,
				RequiresVerification: requiresVerification,
				Message:              fmt.Sprintf("Email '%s' is already taken.", credentials.Email),
			}, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	message := "Registration successful without email verification."
	if requiresVerification {
		message = "Registration successful. Please verify your email."
	}

	return &domain.RegistrationResult{
		Succeeded:            true,
		RequiresVerification: requiresVerification,
		User:                 user,
		Message:              message,
	}, nil
}

// RequestPasswordReset implements domain.PasswordAuthService. The emailed
// link embeds "email::token" in URL-safe base64; the encoding must
// round-trip exactly for ResetPassword to work.
func (s *PasswordAuthImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.userRepo.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate password reset token: %w", err)
	}

	composite := fmt.Sprintf("%s::%s", user.Email, token)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(composite))
	url := fmt.Sprintf("%s/recover-password/%s", s.baseURL, encoded)

	msg := domain.Message{
		Subject:    "Your link to reset password",
		Body:       fmt.Sprintf(`<p>Visit here to reset your password: <a href="%s">%s</a></p>`, url, url),
		IsHTMLBody: true,
	}
	if err := s.notificationSvc.Send(ctx, user.Email, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword implements domain.PasswordAuthService
func (s *PasswordAuthImpl) ResetPassword(ctx context.Context, encodedToken, newPassword string) (bool, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(encodedToken)
	if err != nil {
		return false, domain.ErrInvalidResetToken
	}

	parts := strings.SplitN(string(decoded), "::", 2)
	if len(parts) != 2 {
		return false, domain.ErrInvalidResetToken
	}
	email, token := parts[0], parts[1]

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if len(newPassword) < minPasswordLength {
		log.Printf("Reset password error: Passwords must be at least %d characters.", minPasswordLength)
		return false, nil
	}

	newHash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.userRepo.ResetPassword(ctx, user.ID, token, newHash)
	if err != nil {
		return false, fmt.Errorf("failed to reset password: %w", err)
	}
	return ok, nil
}

var _ domain.PasswordAuthService = (*PasswordAuthImpl)(nil)
