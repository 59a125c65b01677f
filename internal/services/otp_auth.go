package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/you/authwebsvc/domain"
)

// OtpConfig configures the OTP authenticator
type OtpConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

// OtpAuthImpl implements domain.OtpAuthService
type OtpAuthImpl struct {
	cache           domain.OtpCache
	userRepo        domain.UserRepository
	notificationSvc domain.NotificationService
	config          OtpConfig
}

// NewOtpAuth creates a new OTP authenticator
func NewOtpAuth(
	cache domain.OtpCache,
	userRepo domain.UserRepository,
	notificationSvc domain.NotificationService,
	config OtpConfig,
) domain.OtpAuthService {
	return &OtpAuthImpl{
		cache:           cache,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		config:          config,
	}
}

// SendOtp implements domain.OtpAuthService. The returned confirmation
// token identifies the pending flow; the numeric code travels only by
// email.
func (s *OtpAuthImpl) SendOtp(ctx context.Context, user *domain.User) (string, error) {
	code, err := s.generateSecureCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	token := uuid.NewString()
	entry := &domain.OtpEntry{
		Code:           code,
		UserID:         user.ID,
		FailedAttempts: 0,
		CreatedAt:      time.Now(),
	}
	if err := s.cache.Save(ctx, token, entry); err != nil {
		return "", fmt.Errorf("failed to store OTP entry: %w", err)
	}

	msg := domain.Message{
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes())),
	}
	if err := s.notificationSvc.Send(ctx, user.Email, msg); err != nil {
		// Roll the entry back so a dead token is never handed out.
		_ = s.cache.Delete(ctx, token)
		return "", fmt.Errorf("failed to send OTP email: %w", err)
	}

	return token, nil
}

// Verify implements domain.OtpAuthService. An absent or expired token and
// an exhausted entry both fail with a distinct error; a wrong code is a
// plain failed result that reveals nothing about remaining attempts.
func (s *OtpAuthImpl) Verify(ctx context.Context, token, code string) (*domain.AuthenticationResult, error) {
	entry, err := s.cache.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if entry.FailedAttempts >= s.config.MaxAttempts {
		_ = s.cache.Delete(ctx, token)
		return nil, domain.ErrOTPMaxAttempts
	}

	if entry.Code != code {
		attempts, err := s.cache.IncrementAttempts(ctx, token)
		if err != nil {
			return nil, err
		}
		if attempts >= s.config.MaxAttempts {
			_ = s.cache.Delete(ctx, token)
		}
		return &domain.AuthenticationResult{Succeeded: false}, nil
	}

	user, err := s.userRepo.FindByID(ctx, entry.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := s.userRepo.ConfirmEmail(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to evict OTP entry: %w", err)
	}

	user.EmailConfirmed = true
	return &domain.AuthenticationResult{
		User:             user,
		Succeeded:        true,
		IsEmailConfirmed: true,
	}, nil
}

// Resend implements domain.OtpAuthService. The old entry must still exist;
// it is evicted before the replacement code is dispatched, so exactly one
// token per confirmation flow is ever live.
func (s *OtpAuthImpl) Resend(ctx context.Context, oldToken string) (string, error) {
	entry, err := s.cache.Get(ctx, oldToken)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, entry.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.cache.Delete(ctx, oldToken); err != nil {
		return "", fmt.Errorf("failed to evict old OTP entry: %w", err)
	}

	return s.SendOtp(ctx, user)
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *OtpAuthImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

var _ domain.OtpAuthService = (*OtpAuthImpl)(nil)
