package mocks

import (
	"context"

	"github.com/you/authwebsvc/domain"
)

// MockPasswordAuthService implements domain.PasswordAuthService for testing
type MockPasswordAuthService struct {
	AuthenticateFunc         func(ctx context.Context, credentials domain.PasswordCredentials) (*domain.AuthenticationResult, error)
	RegisterFunc             func(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, encodedToken, newPassword string) (bool, error)
}

// NewMockPasswordAuthService creates a new MockPasswordAuthService
func NewMockPasswordAuthService() *MockPasswordAuthService {
	return &MockPasswordAuthService{}
}

// Authenticate performs a password sign-in
func (m *MockPasswordAuthService) Authenticate(ctx context.Context, credentials domain.PasswordCredentials) (*domain.AuthenticationResult, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return &domain.AuthenticationResult{}, nil
}

// Register creates a new account
func (m *MockPasswordAuthService) Register(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, credentials, requiresVerification)
	}
	return &domain.RegistrationResult{
		Succeeded:            true,
		RequiresVerification: requiresVerification,
		User:                 &domain.User{ID: 1, Email: credentials.Email, Username: credentials.Username},
	}, nil
}

// RequestPasswordReset starts password recovery
func (m *MockPasswordAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

// ResetPassword completes password recovery
func (m *MockPasswordAuthService) ResetPassword(ctx context.Context, encodedToken, newPassword string) (bool, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, encodedToken, newPassword)
	}
	return true, nil
}

var _ domain.PasswordAuthService = (*MockPasswordAuthService)(nil)

// MockOtpAuthService implements domain.OtpAuthService for testing
type MockOtpAuthService struct {
	SendOtpFunc func(ctx context.Context, user *domain.User) (string, error)
	VerifyFunc  func(ctx context.Context, token, code string) (*domain.AuthenticationResult, error)
	ResendFunc  func(ctx context.Context, oldToken string) (string, error)
}

// NewMockOtpAuthService creates a new MockOtpAuthService
func NewMockOtpAuthService() *MockOtpAuthService {
	return &MockOtpAuthService{}
}

// SendOtp issues a confirmation code
func (m *MockOtpAuthService) SendOtp(ctx context.Context, user *domain.User) (string, error) {
	if m.SendOtpFunc != nil {
		return m.SendOtpFunc(ctx, user)
	}
	return "confirmation-token", nil
}

// Verify checks a confirmation code
func (m *MockOtpAuthService) Verify(ctx context.Context, token, code string) (*domain.AuthenticationResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token, code)
	}
	return nil, domain.ErrOTPNotFound
}

// Resend reissues a confirmation code
func (m *MockOtpAuthService) Resend(ctx context.Context, oldToken string) (string, error) {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, oldToken)
	}
	return "new-confirmation-token", nil
}

var _ domain.OtpAuthService = (*MockOtpAuthService)(nil)

// MockOAuthService implements domain.OAuthService for testing
type MockOAuthService struct {
	AuthenticateOrRegisterFunc func(ctx context.Context, identity domain.ExternalIdentity) (*domain.AuthenticationResult, error)
}

// NewMockOAuthService creates a new MockOAuthService
func NewMockOAuthService() *MockOAuthService {
	return &MockOAuthService{}
}

// AuthenticateOrRegister reconciles an external identity
func (m *MockOAuthService) AuthenticateOrRegister(ctx context.Context, identity domain.ExternalIdentity) (*domain.AuthenticationResult, error) {
	if m.AuthenticateOrRegisterFunc != nil {
		return m.AuthenticateOrRegisterFunc(ctx, identity)
	}
	return &domain.AuthenticationResult{}, nil
}

var _ domain.OAuthService = (*MockOAuthService)(nil)

// MockOAuthProvider implements domain.OAuthProvider for testing
type MockOAuthProvider struct {
	AuthCodeURLFunc  func(state string) string
	AuthenticateFunc func(ctx context.Context, code string) (domain.ExternalIdentity, error)
}

// NewMockOAuthProvider creates a new MockOAuthProvider
func NewMockOAuthProvider() *MockOAuthProvider {
	return &MockOAuthProvider{}
}

// AuthCodeURL builds the provider authorization URL
func (m *MockOAuthProvider) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://provider.example.com/auth?state=" + state
}

// Authenticate exchanges a callback code for an identity
func (m *MockOAuthProvider) Authenticate(ctx context.Context, code string) (domain.ExternalIdentity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, code)
	}
	return domain.ExternalIdentity{}, nil
}

var _ domain.OAuthProvider = (*MockOAuthProvider)(nil)
