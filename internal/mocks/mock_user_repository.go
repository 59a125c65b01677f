package mocks

import (
	"context"

	"github.com/you/authwebsvc/domain"
)

// MockUserRepository implements domain.UserRepository for testing
type MockUserRepository struct {
	CreateFunc                     func(ctx context.Context, user *domain.User) error
	FindByEmailFunc                func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc                   func(ctx context.Context, id uint) (*domain.User, error)
	ConfirmEmailFunc               func(ctx context.Context, userID uint) error
	ResetAccessFailedCountFunc     func(ctx context.Context, userID uint) error
	AccessFailedFunc               func(ctx context.Context, userID uint) (bool, error)
	GeneratePasswordResetTokenFunc func(ctx context.Context, userID uint) (string, error)
	ResetPasswordFunc              func(ctx context.Context, userID uint, token, newPasswordHash string) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create persists a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success with an assigned ID
	user.ID = 1
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// ConfirmEmail marks the user's email as confirmed
func (m *MockUserRepository) ConfirmEmail(ctx context.Context, userID uint) error {
	if m.ConfirmEmailFunc != nil {
		return m.ConfirmEmailFunc(ctx, userID)
	}
	return nil
}

// ResetAccessFailedCount zeroes the failed-attempt counter
func (m *MockUserRepository) ResetAccessFailedCount(ctx context.Context, userID uint) error {
	if m.ResetAccessFailedCountFunc != nil {
		return m.ResetAccessFailedCountFunc(ctx, userID)
	}
	return nil
}

// AccessFailed records one failed attempt
func (m *MockUserRepository) AccessFailed(ctx context.Context, userID uint) (bool, error) {
	if m.AccessFailedFunc != nil {
		return m.AccessFailedFunc(ctx, userID)
	}
	// Default behavior: not locked out
	return false, nil
}

// GeneratePasswordResetToken creates a single-use reset token
func (m *MockUserRepository) GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error) {
	if m.GeneratePasswordResetTokenFunc != nil {
		return m.GeneratePasswordResetTokenFunc(ctx, userID)
	}
	return "reset-token", nil
}

// ResetPassword consumes the token and installs the new password hash
func (m *MockUserRepository) ResetPassword(ctx context.Context, userID uint, token, newPasswordHash string) (bool, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, userID, token, newPasswordHash)
	}
	return true, nil
}


// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
