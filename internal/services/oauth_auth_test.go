package services

import (
	"context"
	"testing"
	"time"

	"github.com/you/authwebsvc/domain"
	"github.com/you/authwebsvc/internal/mocks"
)

func TestOAuthAuthImpl_AuthenticateOrRegister_NewEmailAutoRegisters(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()

	var registered domain.RegistrationCredentials
	var registeredVerification bool
	passwordAuth := mocks.NewMockPasswordAuthService()
	passwordAuth.RegisterFunc = func(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error) {
		registered = credentials
		registeredVerification = requiresVerification
		return &domain.RegistrationResult{
			Succeeded: true,
			User: &domain.User{
				ID:             7,
				Email:          credentials.Email,
				Username:       "Jane_Doe",
				EmailConfirmed: true,
			},
		}, nil
	}

	svc := NewOAuthAuth(userRepo, passwordAuth)
	identity := domain.ExternalIdentity{Succeeded: true, Email: "jane@example.com", Name: "Jane Doe"}

	result, err := svc.AuthenticateOrRegister(context.Background(), identity)
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if !result.Succeeded {
		t.Fatal("new verified identity must sign in")
	}
	if !result.IsEmailConfirmed {
		t.Error("auto-registered account must be pre-confirmed")
	}
	if result.User == nil || result.User.ID != 7 {
		t.Errorf("result user = %+v", result.User)
	}
	if registered.Email != identity.Email || registered.Username != identity.Name {
		t.Errorf("registered credentials = %+v", registered)
	}
	if registered.Password != "" {
		t.Error("oauth registration must be passwordless")
	}
	if registeredVerification {
		t.Error("the provider already verified the email, no OTP round needed")
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_KnownConfirmedUser(t *testing.T) {
	user := createConfirmedUser(t)
	store := newFakeUserStore(user, 5, 15*time.Minute)
	user.FailedAccessCount = 3

	passwordAuth := mocks.NewMockPasswordAuthService()
	passwordAuth.RegisterFunc = func(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error) {
		t.Fatal("an existing account must not be re-registered")
		return nil, nil
	}

	svc := NewOAuthAuth(store, passwordAuth)
	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: true, Email: user.Email})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if !result.Succeeded {
		t.Fatal("confirmed unlocked account must sign in")
	}
	if got := store.snapshot().FailedAccessCount; got != 0 {
		t.Errorf("FailedAccessCount = %d after sign-in, want 0", got)
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_LockedOutUser(t *testing.T) {
	user := createLockedOutUser(t)
	store := newFakeUserStore(user, 5, 15*time.Minute)

	svc := NewOAuthAuth(store, mocks.NewMockPasswordAuthService())
	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: true, Email: user.Email})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if result.Succeeded {
		t.Fatal("a locked-out account must not sign in even with a verified identity")
	}
	if !result.IsLockedOut {
		t.Error("result must report the lockout")
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_UnconfirmedUserRecordsFailure(t *testing.T) {
	user := createConfirmedUser(t)
	user.EmailConfirmed = false
	store := newFakeUserStore(user, 5, 15*time.Minute)

	svc := NewOAuthAuth(store, mocks.NewMockPasswordAuthService())
	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: true, Email: user.Email})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if result.Succeeded {
		t.Fatal("unconfirmed account must not sign in")
	}
	if result.IsEmailConfirmed {
		t.Error("result must report the unconfirmed email")
	}
	if got := store.snapshot().FailedAccessCount; got != 1 {
		t.Errorf("FailedAccessCount = %d, want 1", got)
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_ProviderFailure(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		t.Fatal("a failed identity must never reach the store")
		return nil, nil
	}

	svc := NewOAuthAuth(userRepo, mocks.NewMockPasswordAuthService())
	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: false, Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if result.Succeeded || result.User != nil {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_MissingEmailClaim(t *testing.T) {
	svc := NewOAuthAuth(mocks.NewMockUserRepository(), mocks.NewMockPasswordAuthService())

	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: true, Name: "No Email"})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if result.Succeeded {
		t.Fatal("an identity without an email claim cannot be reconciled")
	}
}

func TestOAuthAuthImpl_AuthenticateOrRegister_RegistrationRejected(t *testing.T) {
	passwordAuth := mocks.NewMockPasswordAuthService()
	passwordAuth.RegisterFunc = func(ctx context.Context, credentials domain.RegistrationCredentials, requiresVerification bool) (*domain.RegistrationResult, error) {
		return &domain.RegistrationResult{Succeeded: false, Message: "Email is required."}, nil
	}

	svc := NewOAuthAuth(mocks.NewMockUserRepository(), passwordAuth)
	result, err := svc.AuthenticateOrRegister(context.Background(), domain.ExternalIdentity{Succeeded: true, Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("AuthenticateOrRegister() error = %v", err)
	}
	if result.Succeeded {
		t.Fatal("a rejected registration must not sign in")
	}
}
