package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/authwebsvc/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&DBUser{}, &DBProduct{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxFailedAttempts: 5,
		Window:            15 * time.Minute,
		ResetTokenTTL:     time.Hour,
	}
}

func createTestUser(t *testing.T, repo domain.UserRepository) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:        "user@example.com",
		Username:     "user",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestUserRepositoryImpl_Create(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)
	if user.ID == 0 {
		t.Fatal("Create must assign an ID")
	}

	found, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.ID != user.ID || found.Username != user.Username {
		t.Errorf("found = %+v", found)
	}
	if found.EmailConfirmed {
		t.Error("new user must start unconfirmed")
	}
}

func TestUserRepositoryImpl_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	createTestUser(t, repo)
	err := repo.Create(ctx, &domain.User{Email: "user@example.com", Username: "other"})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestUserRepositoryImpl_FindByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryImpl_FindByID_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())

	_, err := repo.FindByID(context.Background(), 9999)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryImpl_ConfirmEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)
	if err := repo.ConfirmEmail(ctx, user.ID); err != nil {
		t.Fatalf("ConfirmEmail() error = %v", err)
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !found.EmailConfirmed {
		t.Error("EmailConfirmed = false after confirmation")
	}
}

func TestUserRepositoryImpl_AccessFailed_LockoutAtThreshold(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)

	for i := 1; i < 5; i++ {
		lockedOut, err := repo.AccessFailed(ctx, user.ID)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if lockedOut {
			t.Fatalf("attempt %d triggered lockout early", i)
		}
	}

	lockedOut, err := repo.AccessFailed(ctx, user.ID)
	if err != nil {
		t.Fatalf("threshold attempt: %v", err)
	}
	if !lockedOut {
		t.Fatal("the fifth failure must trigger lockout")
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !found.IsLockedOut(time.Now()) {
		t.Error("user must be locked out")
	}
	if found.FailedAccessCount != 0 {
		t.Errorf("FailedAccessCount = %d, want 0 after lockout starts", found.FailedAccessCount)
	}
}

func TestUserRepositoryImpl_AccessFailed_UnknownUser(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())

	_, err := repo.AccessFailed(context.Background(), 9999)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryImpl_ResetAccessFailedCount(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)
	for i := 0; i < 3; i++ {
		if _, err := repo.AccessFailed(ctx, user.ID); err != nil {
			t.Fatalf("AccessFailed() error = %v", err)
		}
	}

	if err := repo.ResetAccessFailedCount(ctx, user.ID); err != nil {
		t.Fatalf("ResetAccessFailedCount() error = %v", err)
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.FailedAccessCount != 0 {
		t.Errorf("FailedAccessCount = %d, want 0", found.FailedAccessCount)
	}

	// The reset also restarts the run-up to lockout.
	for i := 1; i < 5; i++ {
		lockedOut, err := repo.AccessFailed(ctx, user.ID)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if lockedOut {
			t.Fatalf("attempt %d after reset triggered lockout early", i)
		}
	}
}

func TestUserRepositoryImpl_ResetPassword(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)

	token, err := repo.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GeneratePasswordResetToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	ok, err := repo.ResetPassword(ctx, user.ID, "wrong-token", "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if ok {
		t.Fatal("a wrong token must be rejected")
	}

	ok, err = repo.ResetPassword(ctx, user.ID, token, "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if !ok {
		t.Fatal("the issued token must be accepted")
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.PasswordHash != "$2a$10$newhash" {
		t.Errorf("PasswordHash = %q", found.PasswordHash)
	}

	// Single use: the same token is dead after a successful reset.
	ok, err = repo.ResetPassword(ctx, user.ID, token, "$2a$10$anotherhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if ok {
		t.Fatal("a consumed token must be rejected")
	}
}

func TestUserRepositoryImpl_ResetPassword_NoTokenIssued(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)
	ok, err := repo.ResetPassword(ctx, user.ID, "anything", "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if ok {
		t.Fatal("reset without an issued token must fail")
	}
}

func TestUserRepositoryImpl_ResetPassword_ExpiredToken(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), LockoutPolicy{
		MaxFailedAttempts: 5,
		Window:            15 * time.Minute,
		ResetTokenTTL:     -time.Minute,
	})
	ctx := context.Background()

	user := createTestUser(t, repo)
	token, err := repo.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GeneratePasswordResetToken() error = %v", err)
	}

	ok, err := repo.ResetPassword(ctx, user.ID, token, "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if ok {
		t.Fatal("an expired token must be rejected")
	}
}

func TestUserRepositoryImpl_ResetPassword_NewTokenSupersedesOld(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), testPolicy())
	ctx := context.Background()

	user := createTestUser(t, repo)
	oldToken, err := repo.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GeneratePasswordResetToken() error = %v", err)
	}
	newToken, err := repo.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GeneratePasswordResetToken() error = %v", err)
	}

	ok, err := repo.ResetPassword(ctx, user.ID, oldToken, "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if ok {
		t.Fatal("a superseded token must be rejected")
	}

	ok, err = repo.ResetPassword(ctx, user.ID, newToken, "$2a$10$newhash")
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if !ok {
		t.Fatal("the latest token must be accepted")
	}
}
