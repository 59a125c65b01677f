package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/you/authwebsvc/domain"
	"github.com/you/authwebsvc/internal/mocks"
)

// createConfirmedUser returns a confirmed, unlocked user fixture
func createConfirmedUser(t *testing.T) *domain.User {
	t.Helper()
	return &domain.User{
		ID:             1,
		Email:          "user@example.com",
		Username:       "user",
		PasswordHash:   "hashed_correct-password",
		EmailConfirmed: true,
		CreatedAt:      time.Now(),
	}
}

// createLockedOutUser returns a user inside an active lockout window
func createLockedOutUser(t *testing.T) *domain.User {
	t.Helper()
	until := time.Now().Add(15 * time.Minute)
	user := createConfirmedUser(t)
	user.LockoutUntil = &until
	return user
}

// fakeUserStore is a stateful in-memory credential store used by the tests
// that exercise lockout accounting across several calls. It applies the
// same counting rules as the GORM repository.
type fakeUserStore struct {
	mocks.MockUserRepository

	mu             sync.Mutex
	user           *domain.User
	maxAttempts    int
	lockoutWindow  time.Duration
	confirmedCalls int
}

func newFakeUserStore(user *domain.User, maxAttempts int, window time.Duration) *fakeUserStore {
	s := &fakeUserStore{
		user:          user,
		maxAttempts:   maxAttempts,
		lockoutWindow: window,
	}

	s.FindByEmailFunc = func(_ context.Context, email string) (*domain.User, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.user == nil || s.user.Email != email {
			return nil, domain.ErrUserNotFound
		}
		copied := *s.user
		return &copied, nil
	}
	s.FindByIDFunc = func(_ context.Context, id uint) (*domain.User, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.user == nil || s.user.ID != id {
			return nil, domain.ErrUserNotFound
		}
		copied := *s.user
		return &copied, nil
	}
	s.ResetAccessFailedCountFunc = func(_ context.Context, _ uint) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.user.FailedAccessCount = 0
		return nil
	}
	s.AccessFailedFunc = func(_ context.Context, _ uint) (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.user.FailedAccessCount++
		if s.user.FailedAccessCount >= s.maxAttempts {
			until := time.Now().Add(s.lockoutWindow)
			s.user.LockoutUntil = &until
			s.user.FailedAccessCount = 0
			return true, nil
		}
		return false, nil
	}
	s.ConfirmEmailFunc = func(_ context.Context, _ uint) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.user.EmailConfirmed = true
		s.confirmedCalls++
		return nil
	}

	return s
}

func (s *fakeUserStore) snapshot() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.user
}
